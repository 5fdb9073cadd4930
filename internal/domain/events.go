package domain

// Logger interface for structured logging
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
}

// Command is a recognized slash command token
type Command string

const (
	CommandStart    Command = "/start"
	CommandHelp     Command = "/help"
	CommandPremium  Command = "/premium"
	CommandStats    Command = "/stats"
	CommandEarn     Command = "/earn"
	CommandLanguage Command = "/language"
)

// Commands lists every command accepted as an exact message text
var Commands = []Command{
	CommandStart,
	CommandHelp,
	CommandPremium,
	CommandStats,
	CommandEarn,
	CommandLanguage,
}

// ParseCommand returns the command for an exact token match
func ParseCommand(text string) (Command, bool) {
	for _, c := range Commands {
		if string(c) == text {
			return c, true
		}
	}
	return "", false
}

// Action is a callback identifier carried by a button
type Action string

const (
	ActionUnknown     Action = ""
	ActionPremiumInfo Action = "premium_info"
	ActionHowToPlay   Action = "how_to_play"
	ActionEarnGuide   Action = "earn_guide"
	ActionLeaderboard Action = "leaderboard_info"
	ActionWithdrawal  Action = "withdrawal_info"
	ActionLanguageEn  Action = "language_en"
	ActionLanguageRu  Action = "language_ru"
)

// Actions lists every recognized callback identifier
var Actions = []Action{
	ActionPremiumInfo,
	ActionHowToPlay,
	ActionEarnGuide,
	ActionLeaderboard,
	ActionWithdrawal,
	ActionLanguageEn,
	ActionLanguageRu,
}

// ParseAction maps callback data to an action, ActionUnknown if unrecognized
func ParseAction(data string) Action {
	for _, a := range Actions {
		if string(a) == data {
			return a
		}
	}
	return ActionUnknown
}

// Sender describes who an inbound event came from
type Sender struct {
	ChatID      int64
	UserID      int64
	DisplayName string
	Language    string
}

// InboundEvent is one of CommandEvent, PlainTextEvent or CallbackEvent
type InboundEvent interface {
	From() Sender
	inboundEvent()
}

// CommandEvent is a recognized slash command
type CommandEvent struct {
	Sender       Sender
	Command      Command
	ReferralCode string // digits only, empty when absent or invalid
}

// PlainTextEvent is any message text not matched by another rule
type PlainTextEvent struct {
	Sender Sender
	Text   string
}

// CallbackEvent is a button press. QueryID is empty when the action came
// from a reply keyboard caption rather than an inline callback.
type CallbackEvent struct {
	Sender  Sender
	Data    string
	Action  Action
	QueryID string
}

func (e CommandEvent) From() Sender   { return e.Sender }
func (e PlainTextEvent) From() Sender { return e.Sender }
func (e CallbackEvent) From() Sender  { return e.Sender }

func (CommandEvent) inboundEvent()   {}
func (PlainTextEvent) inboundEvent() {}
func (CallbackEvent) inboundEvent()  {}
