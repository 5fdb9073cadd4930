package bot

import (
	"strings"

	"github.com/ad/tonblast-bot/internal/domain"
	"github.com/ad/tonblast-bot/internal/locale"

	"github.com/go-telegram/bot/models"
)

// DefaultDisplayName is used when the sender has no first name
const DefaultDisplayName = "Player"

// CaptionMatcher maps a reply keyboard caption back to its action
type CaptionMatcher interface {
	ActionForCaption(text string) (domain.Action, bool)
}

// Classifier turns raw Telegram updates into inbound events
type Classifier struct {
	style    domain.KeyboardStyle
	captions CaptionMatcher
}

// NewClassifier creates a classifier. Captions are only consulted for the reply style,
// where button presses arrive as plain message text.
func NewClassifier(style domain.KeyboardStyle, captions CaptionMatcher) *Classifier {
	return &Classifier{
		style:    style,
		captions: captions,
	}
}

// Classify applies the rules in order: callback, exact command, referral start,
// reply caption, plain text. Only the first matching rule applies.
func (c *Classifier) Classify(update *models.Update) (domain.InboundEvent, error) {
	if update == nil {
		return nil, ErrMalformedUpdate
	}

	if cq := update.CallbackQuery; cq != nil {
		sender := callbackSender(cq)
		if sender.ChatID == 0 {
			return nil, ErrMalformedUpdate
		}
		return domain.CallbackEvent{
			Sender:  sender,
			Data:    cq.Data,
			Action:  domain.ParseAction(cq.Data),
			QueryID: cq.ID,
		}, nil
	}

	msg := update.Message
	if msg == nil || msg.Chat.ID == 0 {
		return nil, ErrMalformedUpdate
	}

	sender := newSender(msg.Chat.ID, msg.From)
	text := msg.Text
	if text == "" {
		return nil, ErrNoText
	}

	if cmd, ok := domain.ParseCommand(text); ok {
		return domain.CommandEvent{Sender: sender, Command: cmd}, nil
	}

	if domain.IsReferralStart(text) {
		return domain.CommandEvent{
			Sender:       sender,
			Command:      domain.CommandStart,
			ReferralCode: domain.ParseReferralCode(text),
		}, nil
	}

	if c.style == domain.KeyboardReply && c.captions != nil {
		if action, ok := c.captions.ActionForCaption(strings.TrimSpace(text)); ok {
			return domain.CallbackEvent{
				Sender: sender,
				Data:   string(action),
				Action: action,
			}, nil
		}
	}

	return domain.PlainTextEvent{Sender: sender, Text: text}, nil
}

// callbackSender resolves the chat from the message carrying the keyboard,
// falling back to the presser's private chat.
func callbackSender(cq *models.CallbackQuery) domain.Sender {
	chatID := cq.From.ID
	switch {
	case cq.Message.Message != nil && cq.Message.Message.Chat.ID != 0:
		chatID = cq.Message.Message.Chat.ID
	case cq.Message.InaccessibleMessage != nil && cq.Message.InaccessibleMessage.Chat.ID != 0:
		chatID = cq.Message.InaccessibleMessage.Chat.ID
	}
	return newSender(chatID, &cq.From)
}

func newSender(chatID int64, user *models.User) domain.Sender {
	sender := domain.Sender{
		ChatID:      chatID,
		DisplayName: DefaultDisplayName,
		Language:    locale.Fallback,
	}
	if user == nil {
		return sender
	}

	sender.UserID = user.ID
	if name := strings.TrimSpace(user.FirstName); name != "" {
		sender.DisplayName = name
	}
	sender.Language = locale.MatchLanguage(user.LanguageCode)
	return sender
}
