// ABOUTME: Tests for canonical conversation key derivation
// ABOUTME: Covers commutativity, stability and round-trip parsing

package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_Commutative(t *testing.T) {
	pairs := [][2]string{
		{"alice", "bob"},
		{"bob", "alice"},
		{"aya-x", "user-42"},
		{"zz", "aa"},
		{"same", "same"},
	}
	for _, p := range pairs {
		assert.Equal(t, Key(p[0], p[1]), Key(p[1], p[0]), "Key(%q,%q)", p[0], p[1])
	}
}

func TestKey_Deterministic(t *testing.T) {
	assert.Equal(t, "alice__bob", Key("bob", "alice"))
	assert.Equal(t, "alice__bob", Key("alice", "bob"))
}

func TestKey_DistinctPairsDistinctKeys(t *testing.T) {
	assert.NotEqual(t, Key("a", "b"), Key("a", "c"))
	assert.NotEqual(t, Key("a", "b"), Key("b", "c"))
}

func TestParticipants_RoundTrip(t *testing.T) {
	key := Key("user-1", "aya-x")
	a, b, ok := Participants(key)
	require.True(t, ok)
	assert.Equal(t, "aya-x", a)
	assert.Equal(t, "user-1", b)
}

func TestParticipants_Malformed(t *testing.T) {
	for _, bad := range []string{"", "solo", "__", "left__"} {
		_, _, ok := Participants(bad)
		assert.False(t, ok, "key %q should not parse", bad)
	}
}
