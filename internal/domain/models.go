package domain

// TemplateKey identifies one localized content unit
type TemplateKey string

const (
	TemplateWelcome          TemplateKey = "welcome"
	TemplateWelcomeReferral  TemplateKey = "welcome_referral"
	TemplateReferralNotice   TemplateKey = "referral_notice"
	TemplateMenu             TemplateKey = "menu"
	TemplatePremiumInfo      TemplateKey = "premium_info"
	TemplateHowToPlay        TemplateKey = "how_to_play"
	TemplateStats            TemplateKey = "stats"
	TemplateEarnGuide        TemplateKey = "earn_guide"
	TemplateLeaderboard      TemplateKey = "leaderboard"
	TemplateWithdrawalInfo   TemplateKey = "withdrawal_info"
	TemplateLanguageSelector TemplateKey = "language_selector"
)

// TemplateKeys lists all template keys
var TemplateKeys = []TemplateKey{
	TemplateWelcome,
	TemplateWelcomeReferral,
	TemplateReferralNotice,
	TemplateMenu,
	TemplatePremiumInfo,
	TemplateHowToPlay,
	TemplateStats,
	TemplateEarnGuide,
	TemplateLeaderboard,
	TemplateWithdrawalInfo,
	TemplateLanguageSelector,
}

// KeyboardStyle selects how button layouts are presented
type KeyboardStyle string

const (
	KeyboardInline KeyboardStyle = "inline"
	KeyboardReply  KeyboardStyle = "reply"
)

// MaxButtonsPerRow bounds row width for readability on small screens
const MaxButtonsPerRow = 3

// Button is either a game-launch link (URL set) or an action button
type Button struct {
	Text   string
	URL    string
	Action Action
}

// IsGameLink reports whether the button opens the game client
func (b Button) IsGameLink() bool {
	return b.URL != ""
}

// KeyboardLayout is a set of non-empty button rows
type KeyboardLayout struct {
	Style KeyboardStyle
	Rows  [][]Button
}

// HasGameLink reports whether any button opens the game client
func (k *KeyboardLayout) HasGameLink() bool {
	if k == nil {
		return false
	}
	for _, row := range k.Rows {
		for _, b := range row {
			if b.IsGameLink() {
				return true
			}
		}
	}
	return false
}

// ParseMode is the markup mode of an outbound message
type ParseMode string

const (
	ParseModeNone ParseMode = ""
	ParseModeHTML ParseMode = "HTML"
)

// OutboundMessage is a single message to deliver
type OutboundMessage struct {
	ChatID    int64
	Text      string
	ParseMode ParseMode
	Keyboard  *KeyboardLayout
}
