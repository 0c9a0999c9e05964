package models

// User represents a user known to the matchmaking service.
// A record is created on the first inbound event from an unseen identity, or
// in "shadow" form (handle known, no Telegram ID) when the user is named as a
// partner before ever talking to the bot. Records are never deleted.
type User struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// TelegramID is nil for shadow records and authoritative once set.
	TelegramID *int64 `gorm:"uniqueIndex" json:"telegram_id,omitempty"`
	// Handle is stored bare, without the sigil. Unique among non-empty values.
	Handle    string `gorm:"uniqueIndex:idx_users_handle,where:handle <> ''" json:"handle,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	// ConversationState is owned by the conversation engine; the matchmaking
	// coordinator may write it for both participants of a match attempt.
	ConversationState ConversationState `gorm:"type:text;not null;default:DEFAULT" json:"conversation_state"`
}

// Identity returns the addressing fields of the record.
func (u *User) Identity() Identity {
	return Identity{ID: u.TelegramID, Handle: u.Handle}
}

// IsShadow reports whether the record was created for a partner who has not
// yet interacted with the service directly.
func (u *User) IsShadow() bool {
	return u.TelegramID == nil
}
