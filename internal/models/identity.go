package models

import (
	"strconv"
	"strings"
)

// Sigil prefixes a Telegram handle in user-facing text (e.g. "@alice").
const Sigil = "@"

// Identity addresses a user by numeric Telegram ID and/or handle.
// At least one of the two fields must be present once an identity is
// persisted anywhere. The numeric ID, once known, is authoritative.
type Identity struct {
	ID     *int64 `json:"id,omitempty"`
	Handle string `json:"handle,omitempty"` // stored bare, without the sigil
}

// Specified reports whether the identity carries at least one address.
func (i Identity) Specified() bool {
	return i.ID != nil || i.Handle != ""
}

// Resolved reports whether the numeric ID is known, i.e. whether the
// identity is directly reachable through the messaging gateway.
func (i Identity) Resolved() bool {
	return i.ID != nil
}

// Key returns the canonical storage key for the identity: the decimal
// numeric ID when known, otherwise the sigil-prefixed handle.
func (i Identity) Key() string {
	if i.ID != nil {
		return strconv.FormatInt(*i.ID, 10)
	}
	return Sigil + i.Handle
}

// Same reports whether two identities address the same user. Numeric IDs
// win when both are known; otherwise handles are compared case-insensitively
// (Telegram handles are case-insensitive).
func (i Identity) Same(other Identity) bool {
	if i.ID != nil && other.ID != nil {
		return *i.ID == *other.ID
	}
	if i.Handle != "" && other.Handle != "" {
		return strings.EqualFold(i.Handle, other.Handle)
	}
	return false
}

// Refs returns every canonical key this identity may have been stored
// under: the numeric key, and the handle key it had before its numeric ID
// became known.
func (i Identity) Refs() []string {
	refs := []string{i.Key()}
	if i.ID != nil && i.Handle != "" {
		refs = append(refs, Sigil+NormalizeHandle(i.Handle))
	}
	return refs
}

// NormalizeHandle strips the sigil and surrounding whitespace from a handle.
func NormalizeHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), Sigil)
}

// IsHandle reports whether a piece of inbound text names a partner by handle.
func IsHandle(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), Sigil)
}

// ParseKey is the inverse of Identity.Key.
func ParseKey(key string) Identity {
	if strings.HasPrefix(key, Sigil) {
		return Identity{Handle: strings.TrimPrefix(key, Sigil)}
	}
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		return Identity{ID: &id}
	}
	return Identity{Handle: key}
}
