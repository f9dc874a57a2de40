package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePair(t *testing.T) {
	lo, hi := NormalizePair("bob", "alice")
	assert.Equal(t, "alice", lo)
	assert.Equal(t, "bob", hi)

	lo, hi = NormalizePair("alice", "bob")
	assert.Equal(t, "alice", lo)
	assert.Equal(t, "bob", hi)
}

func TestNormalizeScope(t *testing.T) {
	assert.Nil(t, NormalizeScope(nil))

	empty := ""
	assert.Nil(t, NormalizeScope(&empty), "empty scope is the same as no scope")

	listing := "L1"
	scope := NormalizeScope(&listing)
	if assert.NotNil(t, scope) {
		assert.Equal(t, "L1", *scope)
	}
}

func TestScopeKey(t *testing.T) {
	assert.Equal(t, "", ScopeKey(nil))
	empty := ""
	assert.Equal(t, "", ScopeKey(&empty))
	listing := "L1"
	assert.Equal(t, "L1", ScopeKey(&listing))
}

func TestConversationParticipants(t *testing.T) {
	conv := &Conversation{UserLo: "alice", UserHi: "bob"}

	assert.True(t, conv.HasParticipant("alice"))
	assert.True(t, conv.HasParticipant("bob"))
	assert.False(t, conv.HasParticipant("mallory"))

	assert.Equal(t, "bob", conv.CounterpartOf("alice"))
	assert.Equal(t, "alice", conv.CounterpartOf("bob"))
	assert.Equal(t, "", conv.CounterpartOf("mallory"))
}
