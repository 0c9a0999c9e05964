package telegram

import (
	"context"

	"pairlink/backend/internal/config"
	"pairlink/backend/internal/gateway"
	"pairlink/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Send implements gateway.Gateway. An identity with no numeric ID has no
// chat to deliver to; a Telegram API failure (blocked bot, deleted account,
// never-started conversation) is also surfaced as a DeliveryError so the
// coordinator can fall back to the deferred-match path.
func (s *BotService) Send(ctx context.Context, to models.Identity, text string, keyboard gateway.Keyboard) error {
	if to.ID == nil {
		return &gateway.DeliveryError{To: to}
	}

	msg := tgbotapi.NewMessage(*to.ID, text)
	switch keyboard {
	case gateway.KeyboardMainMenu:
		msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(config.MenuStartMatching),
			),
		)
	case gateway.KeyboardShareContact:
		msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButtonContact("Share contact"),
			),
		)
	case gateway.KeyboardRemove:
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	}

	if _, err := s.BotAPI.Send(msg); err != nil {
		return &gateway.DeliveryError{To: to, Cause: err}
	}
	return nil
}
