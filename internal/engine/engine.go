// Package engine implements the per-user conversation state machine: given
// an inbound event and the sender's current state, it decides the next state
// and performs the outbound sends and store mutations for the transition.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"pairlink/backend/internal/config"
	"pairlink/backend/internal/gateway"
	"pairlink/backend/internal/matchmaking"
	"pairlink/backend/internal/models"
	"pairlink/backend/internal/storage"
)

// User-facing replies. Unmatched input repeats the prompt of the current
// state and leaves the state unchanged.
const (
	msgMenu            = "Choose an option:"
	msgMenuReminder    = "Use the menu below, or send /start to show it again."
	msgPromptPartner   = "Send your partner's @username, or share their contact."
	msgRepromptPartner = "That doesn't look like a partner reference. Send an @username, or share a contact."
	msgStillWaiting    = "Still waiting for your partner. Send /cancel to stop."
	msgCanceled        = "Canceled."
	msgAwaited         = "Someone asked to connect with you while you were away!"
	msgConfirmPending  = "You have an incoming match request. Accepting or declining isn't available yet."
	msgConnected       = "You are connected. Send /cancel to leave."
	msgSelfMatch       = "You cannot match with yourself. Name someone else."
	msgNothingToList   = "Nothing to list yet."
)

// Matchmaker is the slice of the matchmaking coordinator the engine invokes.
type Matchmaker interface {
	RequestMatch(ctx context.Context, requester models.Identity, requesterDisplay string, ref matchmaking.PartnerRef) error
	CancelMatch(ctx context.Context, requester models.Identity) error
}

// Engine routes inbound events through the state machine. It keeps no
// in-process mutable state: everything lives in the durable stores, which
// are the only synchronization point between concurrent event tasks.
type Engine struct {
	Storage    storage.Storage
	Gateway    gateway.Gateway
	Matchmaker Matchmaker
}

// NewEngine creates a new Engine.
func NewEngine(s storage.Storage, gw gateway.Gateway, mm Matchmaker) *Engine {
	return &Engine{Storage: s, Gateway: gw, Matchmaker: mm}
}

// HandleEvent processes one inbound user action. The sender's user record is
// upserted (and a shadow record promoted) before any branch runs, then the
// pending-intent rule, the command surface, and finally the state dispatch.
func (e *Engine) HandleEvent(ctx context.Context, event models.InboundEvent) error {
	if !event.Sender.Specified() {
		return matchmaking.ErrUnderspecifiedIdentity
	}

	user, err := e.upsertSender(event)
	if err != nil {
		return err
	}

	consumed, err := e.consumePendingIntent(ctx, user)
	if err != nil {
		return err
	}
	if consumed {
		return nil
	}

	switch strings.TrimSpace(event.Text) {
	case config.CommandCancel:
		if err := e.Matchmaker.CancelMatch(ctx, user.Identity()); err != nil {
			return err
		}
		return e.Gateway.Send(ctx, user.Identity(), msgCanceled, gateway.KeyboardMainMenu)
	case config.CommandStart, config.CommandTouch:
		if err := e.Storage.SetConversationState(user.Identity(), models.StateDefault); err != nil {
			return err
		}
		return e.Gateway.Send(ctx, user.Identity(), msgMenu, gateway.KeyboardMainMenu)
	case config.CommandList:
		return e.handleList(ctx, user)
	}

	return e.dispatch(ctx, user, event)
}

// dispatch runs the sender-state × input transition table.
func (e *Engine) dispatch(ctx context.Context, user *models.User, event models.InboundEvent) error {
	switch user.ConversationState {
	case models.StateDefault:
		if strings.TrimSpace(event.Text) == config.MenuStartMatching {
			if err := e.Storage.SetConversationState(user.Identity(), models.StateAwaitingPartnerInformation); err != nil {
				return err
			}
			return e.Gateway.Send(ctx, user.Identity(), msgPromptPartner, gateway.KeyboardShareContact)
		}
		return e.Gateway.Send(ctx, user.Identity(), msgMenuReminder, gateway.KeyboardMainMenu)

	case models.StateAwaitingPartnerInformation:
		ref := matchmaking.RefFromEvent(event)
		if ref == nil {
			return e.Gateway.Send(ctx, user.Identity(), msgRepromptPartner, gateway.KeyboardShareContact)
		}
		err := e.Matchmaker.RequestMatch(ctx, user.Identity(), displayName(user), ref)
		switch {
		case errors.Is(err, matchmaking.ErrSelfMatch):
			return e.Gateway.Send(ctx, user.Identity(), msgSelfMatch, gateway.KeyboardShareContact)
		case errors.Is(err, matchmaking.ErrUnderspecifiedIdentity):
			return e.Gateway.Send(ctx, user.Identity(), msgRepromptPartner, gateway.KeyboardShareContact)
		default:
			return err
		}

	case models.StateWaitingForPartner:
		return e.Gateway.Send(ctx, user.Identity(), msgStillWaiting, gateway.KeyboardNone)

	case models.StateWaitingForConfirmation:
		// Accept/decline transition rules are not defined yet.
		return e.Gateway.Send(ctx, user.Identity(), msgConfirmPending, gateway.KeyboardNone)

	case models.StateConnected:
		return e.Gateway.Send(ctx, user.Identity(), msgConnected, gateway.KeyboardNone)

	default:
		// Includes WAITING_FOR_CONVERSATION_TO_START with no intent left:
		// nothing to wait for anymore, fall back to the entry menu.
		if err := e.Storage.SetConversationState(user.Identity(), models.StateDefault); err != nil {
			return err
		}
		return e.Gateway.Send(ctx, user.Identity(), msgMenu, gateway.KeyboardMainMenu)
	}
}

// upsertSender guarantees the sender is present in the user store before any
// branch runs. A shadow record matching the sender's handle is promoted in
// place; that is the only allowed identity merge.
func (e *Engine) upsertSender(event models.InboundEvent) (*models.User, error) {
	sender := event.Sender
	if sender.ID != nil {
		existing, err := e.Storage.GetUserByTelegramID(*sender.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
		if sender.Handle != "" {
			shadow, err := e.Storage.GetUserByHandle(sender.Handle)
			if err != nil {
				return nil, err
			}
			if shadow != nil && shadow.IsShadow() {
				return e.Storage.PromoteShadowUser(sender.Handle, *sender.ID, event.FirstName, event.LastName)
			}
		}
	}

	return e.Storage.SaveUserIfNotExists(&models.User{
		TelegramID:        sender.ID,
		Handle:            models.NormalizeHandle(sender.Handle),
		FirstName:         event.FirstName,
		LastName:          event.LastName,
		ConversationState: models.StateDefault,
	})
}

// consumePendingIntent delivers the "you are awaited" notice and consumes
// the intent if one is outstanding for the sender. A sender parked in
// WAITING_FOR_CONVERSATION_TO_START advances to DEFAULT.
func (e *Engine) consumePendingIntent(ctx context.Context, user *models.User) (bool, error) {
	intent, err := e.Storage.FindPendingIntentFor(user.Identity())
	if err != nil {
		return false, err
	}
	if intent == nil {
		return false, nil
	}

	if err := e.Gateway.Send(ctx, user.Identity(), msgAwaited, gateway.KeyboardMainMenu); err != nil {
		log.Printf("WARN: Failed to deliver awaited notice to %s: %v", user.Identity().Key(), err)
	}
	if err := e.Storage.DeletePendingIntent(intent.ID); err != nil {
		return false, err
	}

	if user.ConversationState == models.StateWaitingForConversationToStart {
		if err := e.Storage.SetConversationState(user.Identity(), models.StateDefault); err != nil {
			return false, err
		}
		user.ConversationState = models.StateDefault
	}
	return true, nil
}

// handleList enumerates the pending intents and connections addressed to the
// caller.
func (e *Engine) handleList(ctx context.Context, user *models.User) error {
	var lines []string

	intent, err := e.Storage.FindPendingIntentFor(user.Identity())
	if err != nil {
		return err
	}
	if intent != nil {
		lines = append(lines, "• a connection is waiting for you to start")
	}

	conns, err := e.Storage.ListConnectionsForUser(user.Identity().Refs())
	if err != nil {
		return err
	}
	for _, conn := range conns {
		lines = append(lines, fmt.Sprintf("• %s → %s: %s", conn.UserRef, conn.PartnerRef, conn.State))
	}

	text := msgNothingToList
	if len(lines) > 0 {
		text = strings.Join(lines, "\n")
	}
	return e.Gateway.Send(ctx, user.Identity(), text, gateway.KeyboardNone)
}

func displayName(user *models.User) string {
	if user.Handle != "" {
		return models.Sigil + user.Handle
	}
	if user.FirstName != "" {
		return user.FirstName
	}
	return user.Identity().Key()
}
