// Package gateway defines the outbound side of the messaging transport: the
// Send contract the conversation engine and matchmaking coordinator talk to,
// and the error returned when a user is unreachable. The Telegram adapter in
// internal/telegram implements it.
package gateway

import (
	"context"
	"fmt"

	"pairlink/backend/internal/models"
)

// Keyboard selects the reply-keyboard variant attached to an outbound message.
type Keyboard int

const (
	// KeyboardNone leaves the current keyboard untouched.
	KeyboardNone Keyboard = iota
	// KeyboardMainMenu shows the entry menu.
	KeyboardMainMenu
	// KeyboardShareContact offers a "share contact" button alongside typing
	// a handle.
	KeyboardShareContact
	// KeyboardRemove hides any custom keyboard.
	KeyboardRemove
)

// Gateway delivers outbound messages to users.
type Gateway interface {
	// Send delivers text to the identity. It returns a *DeliveryError when
	// the identity cannot be reached (no numeric ID on file, or the peer has
	// blocked or never started a conversation with the bot).
	Send(ctx context.Context, to models.Identity, text string, keyboard Keyboard) error
}

// DeliveryError reports that a resolved identity turned out to be
// unreachable through the transport.
type DeliveryError struct {
	To    models.Identity
	Cause error
}

func (e *DeliveryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("delivery to %s failed: %v", e.To.Key(), e.Cause)
	}
	return fmt.Sprintf("delivery to %s failed: identity unreachable", e.To.Key())
}

func (e *DeliveryError) Unwrap() error { return e.Cause }
