package models

import "time"

// PendingIntent records that a connection is waiting for a not-yet-known
// identity to appear. It is created when a requester names a partner with no
// Telegram ID on file, and consumed exactly once on that identity's first
// inbound event. At most one intent exists per identity at a time.
type PendingIntent struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// IdentityKey is the canonical Identity.Key of the awaited user; the
	// unique index makes the insert an atomic insert-if-absent.
	IdentityKey string `gorm:"uniqueIndex;not null" json:"identity_key"`
	TelegramID  *int64 `json:"telegram_id,omitempty"`
	Handle      string `gorm:"index" json:"handle,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Identity returns the awaited identity.
func (p *PendingIntent) Identity() Identity {
	return Identity{ID: p.TelegramID, Handle: p.Handle}
}
