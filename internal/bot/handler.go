package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/ad/tonblast-bot/internal/domain"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// BotHandler classifies updates and routes them to replies. It holds no
// mutable state and is safe for concurrent use.
type BotHandler struct {
	classifier *Classifier
	router     *Router
	logger     domain.Logger
}

// NewBotHandler creates a new BotHandler
func NewBotHandler(classifier *Classifier, router *Router, logger domain.Logger) *BotHandler {
	return &BotHandler{
		classifier: classifier,
		router:     router,
		logger:     logger,
	}
}

// HandleUpdate processes one update. Updates without text are ignored.
// It returns ErrMalformedUpdate for updates with nothing to act on and
// ErrPrimaryDelivery when the reply could not be sent.
func (h *BotHandler) HandleUpdate(ctx context.Context, update *models.Update) error {
	event, err := h.classifier.Classify(update)
	if err != nil {
		if errors.Is(err, ErrNoText) {
			h.logger.Debug("ignoring message without text", "update_id", update.ID)
			return nil
		}
		return err
	}

	sender := event.From()
	h.logger.Debug("update classified",
		"update_id", update.ID,
		"chat_id", sender.ChatID,
		"language", sender.Language,
		"event", fmt.Sprintf("%T", event))

	return h.router.Handle(ctx, event)
}

// Handle adapts HandleUpdate to the long polling handler signature
func (h *BotHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("panic while handling update", "panic", fmt.Sprint(r))
		}
	}()

	if err := h.HandleUpdate(ctx, update); err != nil {
		h.logger.Error("failed to handle update", "error", err)
	}
}
