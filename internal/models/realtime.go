package models

import "time"

// ContactPayload is the shared-contact form of naming a partner. A contact
// always carries the partner's numeric ID, so it resolves directly.
type ContactPayload struct {
	UserID    int64  `json:"user_id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Handle    string `json:"handle,omitempty"`
}

// InboundEvent is one user action delivered by the messaging gateway,
// dispatched to the conversation engine one task per event.
type InboundEvent struct {
	Sender    Identity
	FirstName string
	LastName  string
	Text      string
	Contact   *ContactPayload
}

// MatchEvent is published to the live event feed whenever a connection's
// lifecycle advances.
type MatchEvent struct {
	Kind       string          `json:"kind"` // "match_requested", "match_canceled"
	UserRef    string          `json:"user_ref"`
	PartnerRef string          `json:"partner_ref"`
	State      ConnectionState `json:"connection_state"`
	At         time.Time       `json:"at"`
}
