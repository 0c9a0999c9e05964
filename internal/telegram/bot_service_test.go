package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

// TestEventFromMessage covers the chat-first identity rule: chat fields win,
// sender fields fill the gaps.
func TestEventFromMessage(t *testing.T) {
	// Arrange
	msg := &tgbotapi.Message{
		Chat: tgbotapi.Chat{ID: 12345, UserName: "alice", FirstName: "Alice"},
		From: &tgbotapi.User{ID: 12345, UserName: "ignored", LastName: "Smith"},
		Text: "hello",
	}

	// Act
	event := EventFromMessage(msg)

	// Assert
	assert.NotNil(t, event.Sender.ID)
	assert.Equal(t, int64(12345), *event.Sender.ID)
	assert.Equal(t, "alice", event.Sender.Handle)
	assert.Equal(t, "Alice", event.FirstName)
	assert.Equal(t, "Smith", event.LastName, "sender fields fill fields the chat left empty")
	assert.Equal(t, "hello", event.Text)
	assert.Nil(t, event.Contact)
}

func TestEventFromMessageFallsBackToSender(t *testing.T) {
	msg := &tgbotapi.Message{
		Chat: tgbotapi.Chat{ID: 12345},
		From: &tgbotapi.User{ID: 12345, UserName: "alice", FirstName: "Alice"},
	}

	event := EventFromMessage(msg)

	assert.Equal(t, "alice", event.Sender.Handle)
	assert.Equal(t, "Alice", event.FirstName)
}

func TestEventFromMessageContact(t *testing.T) {
	msg := &tgbotapi.Message{
		Chat: tgbotapi.Chat{ID: 12345, UserName: "alice"},
		Contact: &tgbotapi.Contact{
			UserID:    678,
			FirstName: "Bob",
			LastName:  "Builder",
		},
	}

	event := EventFromMessage(msg)

	if assert.NotNil(t, event.Contact) {
		assert.Equal(t, int64(678), event.Contact.UserID)
		assert.Equal(t, "Bob", event.Contact.FirstName)
		assert.Equal(t, "Builder", event.Contact.LastName)
	}
}

// A contact without a Telegram account (no user_id) carries no reachable
// identity and is dropped from the event.
func TestEventFromMessageContactWithoutAccount(t *testing.T) {
	msg := &tgbotapi.Message{
		Chat:    tgbotapi.Chat{ID: 12345, UserName: "alice"},
		Contact: &tgbotapi.Contact{PhoneNumber: "+10000000000", FirstName: "Bob"},
	}

	event := EventFromMessage(msg)

	assert.Nil(t, event.Contact)
}
