package matchmaking

import "pairlink/backend/internal/models"

// PartnerRef is the tagged variant of "how the requester named the partner":
// a bare handle typed into the chat, or a shared-contact payload. It is built
// once at the engine's entry point and never re-inspected downstream.
type PartnerRef interface {
	isPartnerRef()
}

// HandleRef names the partner by handle. The handle is stored bare, without
// the sigil.
type HandleRef string

func (HandleRef) isPartnerRef() {}

// ContactRef names the partner through a shared contact, which always
// carries the partner's numeric ID.
type ContactRef struct {
	ID        int64
	Handle    string
	FirstName string
	LastName  string
}

func (ContactRef) isPartnerRef() {}

// RefFromEvent derives the partner reference from an inbound event while the
// requester is in AWAITING_PARTNER_INFORMATION: a shared contact wins, then
// sigil-prefixed text. Returns nil when the event names no partner.
func RefFromEvent(event models.InboundEvent) PartnerRef {
	if event.Contact != nil {
		return ContactRef{
			ID:        event.Contact.UserID,
			Handle:    models.NormalizeHandle(event.Contact.Handle),
			FirstName: event.Contact.FirstName,
			LastName:  event.Contact.LastName,
		}
	}
	if models.IsHandle(event.Text) {
		if handle := models.NormalizeHandle(event.Text); handle != "" {
			return HandleRef(handle)
		}
	}
	return nil
}
