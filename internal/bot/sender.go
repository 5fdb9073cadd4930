package bot

import (
	"context"
	"fmt"

	"github.com/ad/tonblast-bot/internal/domain"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Messenger is the subset of the Telegram client used for delivery.
// *bot.Bot satisfies it.
type Messenger interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

// Sender delivers outbound messages and callback acknowledgements
type Sender struct {
	messenger Messenger
	logger    domain.Logger
}

// NewSender creates a delivery client
func NewSender(messenger Messenger, logger domain.Logger) *Sender {
	return &Sender{
		messenger: messenger,
		logger:    logger,
	}
}

// Deliver sends one message. Failures are logged with the chat and wrapped in ErrDelivery.
func (s *Sender) Deliver(ctx context.Context, msg domain.OutboundMessage) error {
	params := &bot.SendMessageParams{
		ChatID:    msg.ChatID,
		Text:      msg.Text,
		ParseMode: models.ParseMode(msg.ParseMode),
	}
	if markup := buildMarkup(msg.Keyboard); markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := s.messenger.SendMessage(ctx, params); err != nil {
		s.logger.Error("failed to send message", "method", "sendMessage", "chat_id", msg.ChatID, "error", err)
		return fmt.Errorf("%w: sendMessage to chat %d: %w", ErrDelivery, msg.ChatID, err)
	}

	s.logger.Debug("message sent", "chat_id", msg.ChatID)
	return nil
}

// Acknowledge answers a callback query so the client stops its progress indicator
func (s *Sender) Acknowledge(ctx context.Context, queryID string) error {
	_, err := s.messenger.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: queryID,
	})
	if err != nil {
		s.logger.Warn("failed to answer callback query", "method", "answerCallbackQuery", "query_id", queryID, "error", err)
		return fmt.Errorf("%w: answerCallbackQuery %s: %w", ErrDelivery, queryID, err)
	}
	return nil
}
