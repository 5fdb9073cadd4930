package bot

import (
	"github.com/ad/tonblast-bot/internal/domain"

	"github.com/go-telegram/bot/models"
)

// buildMarkup converts a layout into Telegram reply markup. Game links become
// web app buttons so the game opens inside Telegram.
func buildMarkup(layout *domain.KeyboardLayout) models.ReplyMarkup {
	if layout == nil || len(layout.Rows) == 0 {
		return nil
	}

	if layout.Style == domain.KeyboardReply {
		return buildReplyKeyboard(layout)
	}
	return buildInlineKeyboard(layout)
}

func buildInlineKeyboard(layout *domain.KeyboardLayout) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(layout.Rows))
	for _, row := range layout.Rows {
		buttons := make([]models.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			button := models.InlineKeyboardButton{Text: b.Text}
			if b.IsGameLink() {
				button.WebApp = &models.WebAppInfo{URL: b.URL}
			} else {
				button.CallbackData = string(b.Action)
			}
			buttons = append(buttons, button)
		}
		rows = append(rows, buttons)
	}

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// buildReplyKeyboard sends action buttons as plain captions; the classifier
// maps the caption back to its action when the user taps it.
func buildReplyKeyboard(layout *domain.KeyboardLayout) *models.ReplyKeyboardMarkup {
	rows := make([][]models.KeyboardButton, 0, len(layout.Rows))
	for _, row := range layout.Rows {
		buttons := make([]models.KeyboardButton, 0, len(row))
		for _, b := range row {
			button := models.KeyboardButton{Text: b.Text}
			if b.IsGameLink() {
				button.WebApp = &models.WebAppInfo{URL: b.URL}
			}
			buttons = append(buttons, button)
		}
		rows = append(rows, buttons)
	}

	return &models.ReplyKeyboardMarkup{
		Keyboard:       rows,
		ResizeKeyboard: true,
		IsPersistent:   true,
	}
}
