// Package matchmaking coordinates introducing a requester to a named
// partner: resolving the partner reference, linking both users'
// conversation states, advancing the connection lifecycle, and registering
// a pending intent when the partner has never talked to the bot.
package matchmaking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pairlink/backend/internal/gateway"
	"pairlink/backend/internal/models"
	"pairlink/backend/internal/storage"
)

// Coordinator owns the Connection and PendingIntent lifecycles. It writes
// conversation state on both participants as a side effect of a match
// attempt; everything else about conversation state belongs to the engine.
type Coordinator struct {
	Storage storage.Storage
	Gateway gateway.Gateway

	// SymmetricCancel also rolls back the partner's confirmation state and
	// the waiting connection when the requester cancels.
	SymmetricCancel bool
}

// NewCoordinator creates a new Coordinator.
func NewCoordinator(s storage.Storage, gw gateway.Gateway, symmetricCancel bool) *Coordinator {
	return &Coordinator{Storage: s, Gateway: gw, SymmetricCancel: symmetricCancel}
}

// RequestMatch resolves the partner reference and links the two users:
// the requester always ends up in WAITING_FOR_PARTNER; a resolved partner is
// notified and moved to WAITING_FOR_CONFIRMATION; an unresolved partner gets
// a pending intent plus a shadow user record in
// WAITING_FOR_CONVERSATION_TO_START. Either way the connection row for the
// pair is advanced to WAITING and time_requested is stamped once.
// requesterDisplay is how the partner notification names the requester.
func (c *Coordinator) RequestMatch(ctx context.Context, requester models.Identity, requesterDisplay string, ref PartnerRef) error {
	if !requester.Specified() {
		return ErrUnderspecifiedIdentity
	}

	partner, names, err := c.resolve(ref)
	if err != nil {
		return err
	}

	if partner.Same(requester) {
		return ErrSelfMatch
	}

	if err := c.Storage.SetConversationState(requester, models.StateWaitingForPartner); err != nil {
		return err
	}

	reachable := partner.Resolved()
	if reachable {
		invite := fmt.Sprintf("%s wants to connect with you.", requesterDisplay)
		if err := c.Gateway.Send(ctx, partner, invite, gateway.KeyboardNone); err != nil {
			var deliveryErr *gateway.DeliveryError
			if !errors.As(err, &deliveryErr) {
				return err
			}
			// The partner turned out to be unreachable after all; fall back
			// to the deferred path.
			log.Printf("WARN: Partner %s unreachable, deferring match: %v", partner.Key(), err)
			reachable = false
		}
	}

	if reachable {
		if err := c.Storage.SetConversationState(partner, models.StateWaitingForConfirmation); err != nil {
			return err
		}
		notice := fmt.Sprintf("Waiting for %s to confirm. Send /cancel to stop.", displayOf(partner, names))
		if err := c.Gateway.Send(ctx, requester, notice, gateway.KeyboardRemove); err != nil {
			log.Printf("WARN: Failed to notify requester %s: %v", requester.Key(), err)
		}
	} else {
		if err := c.deferMatch(ctx, requester, partner, names); err != nil {
			return err
		}
	}

	return c.recordConnection(requester, partner)
}

// deferMatch registers the unresolved partner: a pending intent plus a
// shadow user record waiting for the partner's first message. Nothing is
// sent to the partner: there is no channel to reach them yet.
func (c *Coordinator) deferMatch(ctx context.Context, requester, partner models.Identity, names [2]string) error {
	intent := &models.PendingIntent{
		TelegramID: partner.ID,
		Handle:     partner.Handle,
		FirstName:  names[0],
		LastName:   names[1],
	}
	if err := c.Storage.SavePendingIntentIfNotExists(intent); err != nil {
		return err
	}

	shadow := &models.User{
		TelegramID:        partner.ID,
		Handle:            partner.Handle,
		FirstName:         names[0],
		LastName:          names[1],
		ConversationState: models.StateWaitingForConversationToStart,
	}
	if _, err := c.Storage.SaveUserIfNotExists(shadow); err != nil {
		return err
	}

	notice := fmt.Sprintf("%s hasn't started a conversation with this bot yet. Ask them to message it first.",
		displayOf(partner, names))
	if err := c.Gateway.Send(ctx, requester, notice, gateway.KeyboardRemove); err != nil {
		log.Printf("WARN: Failed to notify requester %s: %v", requester.Key(), err)
	}
	return nil
}

// recordConnection runs the idempotent insert-if-absent, set-state,
// stamp-timelog sequence for the pair and publishes the lifecycle event.
func (c *Coordinator) recordConnection(requester, partner models.Identity) error {
	conn, err := c.Storage.SaveConnectionIfNotExists(requester.Key(), partner.Key())
	if err != nil {
		return err
	}
	if err := c.Storage.SetConnectionState(conn.UserRef, conn.PartnerRef, models.ConnectionWaiting); err != nil {
		return err
	}
	now := time.Now()
	if err := c.Storage.StampConnectionTimelog(conn.ID, models.ConnectionTimelog{TimeRequested: &now}); err != nil {
		return err
	}

	event := models.MatchEvent{
		Kind:       "match_requested",
		UserRef:    conn.UserRef,
		PartnerRef: conn.PartnerRef,
		State:      models.ConnectionWaiting,
		At:         now,
	}
	if err := c.Storage.PublishMatchEvent(event); err != nil {
		log.Printf("WARN: Failed to publish match event: %v", err)
	}
	return nil
}

// CancelMatch resets the caller's own conversation state to DEFAULT. When
// the symmetric-cancel policy is enabled it additionally moves the caller's
// waiting connections to CANCELED and releases a partner stuck in
// WAITING_FOR_CONFIRMATION.
func (c *Coordinator) CancelMatch(ctx context.Context, requester models.Identity) error {
	if !requester.Specified() {
		return ErrUnderspecifiedIdentity
	}
	if err := c.Storage.SetConversationState(requester, models.StateDefault); err != nil {
		return err
	}
	if !c.SymmetricCancel {
		return nil
	}

	refs := requester.Refs()
	conns, err := c.Storage.ListConnectionsForUser(refs)
	if err != nil {
		return err
	}
	owned := make(map[string]bool, len(refs))
	for _, ref := range refs {
		owned[ref] = true
	}

	for _, conn := range conns {
		if !owned[conn.UserRef] || conn.State != models.ConnectionWaiting {
			continue
		}
		if err := c.Storage.SetConnectionState(conn.UserRef, conn.PartnerRef, models.ConnectionCanceled); err != nil {
			return err
		}
		now := time.Now()
		if err := c.Storage.StampConnectionTimelog(conn.ID, models.ConnectionTimelog{TimeCanceled: &now}); err != nil {
			return err
		}

		partner := models.ParseKey(conn.PartnerRef)
		state, err := c.Storage.GetConversationState(partner)
		if err != nil {
			return err
		}
		if state == models.StateWaitingForConfirmation {
			if err := c.Storage.SetConversationState(partner, models.StateDefault); err != nil {
				return err
			}
			if err := c.Gateway.Send(ctx, partner, "The match request addressed to you was canceled.", gateway.KeyboardNone); err != nil {
				log.Printf("WARN: Failed to notify partner %s about cancellation: %v", partner.Key(), err)
			}
		}

		event := models.MatchEvent{
			Kind:       "match_canceled",
			UserRef:    conn.UserRef,
			PartnerRef: conn.PartnerRef,
			State:      models.ConnectionCanceled,
			At:         now,
		}
		if err := c.Storage.PublishMatchEvent(event); err != nil {
			log.Printf("WARN: Failed to publish match event: %v", err)
		}
	}
	return nil
}

// resolve turns a partner reference into an identity. A contact payload is
// fully known by construction; a handle resolves to a numeric ID only when a
// non-shadow user record for it is on file.
func (c *Coordinator) resolve(ref PartnerRef) (models.Identity, [2]string, error) {
	switch r := ref.(type) {
	case ContactRef:
		id := r.ID
		return models.Identity{ID: &id, Handle: r.Handle}, [2]string{r.FirstName, r.LastName}, nil
	case HandleRef:
		handle := models.NormalizeHandle(string(r))
		if handle == "" {
			return models.Identity{}, [2]string{}, ErrUnderspecifiedIdentity
		}
		partner := models.Identity{Handle: handle}
		known, err := c.Storage.GetUserByHandle(handle)
		if err != nil {
			return models.Identity{}, [2]string{}, err
		}
		if known != nil && known.TelegramID != nil {
			partner.ID = known.TelegramID
			return partner, [2]string{known.FirstName, known.LastName}, nil
		}
		return partner, [2]string{}, nil
	default:
		return models.Identity{}, [2]string{}, ErrUnderspecifiedIdentity
	}
}

func displayOf(identity models.Identity, names [2]string) string {
	if identity.Handle != "" {
		return models.Sigil + identity.Handle
	}
	if names[0] != "" {
		return names[0]
	}
	return identity.Key()
}
