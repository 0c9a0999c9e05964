// Package telegram handles the integration with the Telegram Bot API.
// It receives updates from Telegram, converts them to inbound events for the
// conversation engine, and implements the outbound gateway contract.
package telegram

import (
	"context"
	"log"

	"pairlink/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// EventHandler is the conversation engine's entry point.
type EventHandler interface {
	HandleEvent(ctx context.Context, event models.InboundEvent) error
}

// BotService receives Telegram updates and routes them to the engine.
type BotService struct {
	BotAPI  *tgbotapi.BotAPI
	Handler EventHandler
}

// NewBotService creates a new BotService instance.
func NewBotService(token string, handler EventHandler) (*BotService, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("✅ Authorized on account %s", bot.Self.UserName)

	return &BotService{
		BotAPI:  bot,
		Handler: handler,
	}, nil
}

// SetHandler wires the engine after construction (the engine needs the bot
// as its gateway, so the two are linked in two steps).
func (s *BotService) SetHandler(handler EventHandler) {
	s.Handler = handler
}

// Run is the main loop for receiving Telegram updates. Each update is
// dispatched on its own goroutine; a failed event is logged and does not
// affect other in-flight events.
func (s *BotService) Run() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.BotAPI.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}
		go s.handleMessage(update.Message)
	}
}

func (s *BotService) handleMessage(msg *tgbotapi.Message) {
	event := EventFromMessage(msg)
	if !event.Sender.Specified() {
		log.Printf("WARN: Dropping update %d with no sender identity", msg.MessageID)
		return
	}
	if err := s.Handler.HandleEvent(context.Background(), event); err != nil {
		log.Printf("ERROR: Failed to handle event from %s: %v", event.Sender.Key(), err)
	}
}

// EventFromMessage converts a Telegram message into the engine's inbound
// event shape: sender identity from the chat, text, and the shared-contact
// payload when present.
func EventFromMessage(msg *tgbotapi.Message) models.InboundEvent {
	chatID := msg.Chat.ID
	event := models.InboundEvent{
		Sender: models.Identity{
			ID:     &chatID,
			Handle: models.NormalizeHandle(msg.Chat.UserName),
		},
		FirstName: msg.Chat.FirstName,
		LastName:  msg.Chat.LastName,
		Text:      msg.Text,
	}

	if msg.From != nil {
		if event.Sender.Handle == "" {
			event.Sender.Handle = models.NormalizeHandle(msg.From.UserName)
		}
		if event.FirstName == "" {
			event.FirstName = msg.From.FirstName
		}
		if event.LastName == "" {
			event.LastName = msg.From.LastName
		}
	}

	if msg.Contact != nil && msg.Contact.UserID != 0 {
		event.Contact = &models.ContactPayload{
			UserID:    msg.Contact.UserID,
			FirstName: msg.Contact.FirstName,
			LastName:  msg.Contact.LastName,
		}
	}

	return event
}
