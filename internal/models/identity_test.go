package models_test

import (
	"testing"

	"pairlink/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

// TestIdentityKey verifies the canonical key: numeric ID wins, handle is
// sigil-prefixed otherwise.
func TestIdentityKey(t *testing.T) {
	withID := models.Identity{ID: int64Ptr(123), Handle: "alice"}
	assert.Equal(t, "123", withID.Key(), "numeric ID is authoritative once known")

	handleOnly := models.Identity{Handle: "bob"}
	assert.Equal(t, "@bob", handleOnly.Key())
}

func TestParseKeyRoundTrip(t *testing.T) {
	id := models.ParseKey("123")
	assert.NotNil(t, id.ID)
	assert.Equal(t, int64(123), *id.ID)

	handle := models.ParseKey("@bob")
	assert.Nil(t, handle.ID)
	assert.Equal(t, "bob", handle.Handle)
}

func TestNormalizeHandle(t *testing.T) {
	assert.Equal(t, "alice", models.NormalizeHandle("@alice"))
	assert.Equal(t, "alice", models.NormalizeHandle("  @alice "))
	assert.Equal(t, "alice", models.NormalizeHandle("alice"))
	assert.Equal(t, "", models.NormalizeHandle("@"))
}

func TestIsHandle(t *testing.T) {
	assert.True(t, models.IsHandle("@bob"))
	assert.True(t, models.IsHandle("  @bob"))
	assert.False(t, models.IsHandle("bob"))
	assert.False(t, models.IsHandle(""))
}

// TestIdentitySame covers the self-match guard comparisons: IDs win when
// both are known, handles compare case-insensitively.
func TestIdentitySame(t *testing.T) {
	a := models.Identity{ID: int64Ptr(1), Handle: "alice"}
	alsoA := models.Identity{ID: int64Ptr(1), Handle: "renamed"}
	b := models.Identity{ID: int64Ptr(2), Handle: "alice"}

	assert.True(t, a.Same(alsoA), "same numeric ID is the same user regardless of handle")
	assert.False(t, a.Same(b), "different numeric IDs are never the same user")

	byHandle := models.Identity{Handle: "Alice"}
	assert.True(t, a.Same(byHandle), "handles compare case-insensitively")
	assert.False(t, models.Identity{}.Same(a), "an unspecified identity matches nothing")
}

func TestIdentityRefs(t *testing.T) {
	promoted := models.Identity{ID: int64Ptr(7), Handle: "carol"}
	assert.Equal(t, []string{"7", "@carol"}, promoted.Refs(),
		"a promoted identity keeps the handle key its connections were recorded under")

	handleOnly := models.Identity{Handle: "carol"}
	assert.Equal(t, []string{"@carol"}, handleOnly.Refs())
}

// TestConversationStateValid pins the six defined states.
func TestConversationStateValid(t *testing.T) {
	for _, state := range models.ConversationStates {
		assert.True(t, state.Valid(), "state %s should be valid", state)
	}
	assert.Len(t, models.ConversationStates, 6)
	assert.False(t, models.ConversationState("LIMBO").Valid())
	assert.False(t, models.ConversationState("").Valid())
}
