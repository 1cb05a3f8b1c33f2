// ABOUTME: Tests for the identity directory
// ABOUTME: Covers registration, lookup, self-exclusion and sort order

package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_LookupRegistered(t *testing.T) {
	d := NewDirectory([]Identity{
		{ID: "aya-x", DisplayName: "AYA-X", Kind: KindSimulated},
	})

	peer, ok := d.Lookup("aya-x")
	require.True(t, ok)
	assert.Equal(t, "AYA-X", peer.DisplayName)
	assert.True(t, peer.IsSimulated())

	_, ok = d.Lookup("nobody")
	assert.False(t, ok)
}

func TestDirectory_ListExcludesSelfAndSorts(t *testing.T) {
	d := NewDirectory([]Identity{
		{ID: "u1", DisplayName: "Zoe", Kind: KindLive},
		{ID: "u2", DisplayName: "adam", Kind: KindLive},
		{ID: "demi-ai", DisplayName: "Demi", Kind: KindSimulated},
	})
	d.Register(Identity{ID: "me", DisplayName: "Me", Kind: KindLive})

	peers := d.List("me")
	require.Len(t, peers, 3)
	assert.Equal(t, "adam", peers[0].DisplayName)
	assert.Equal(t, "Demi", peers[1].DisplayName)
	assert.Equal(t, "Zoe", peers[2].DisplayName)
}

func TestDirectory_RegisterReplaces(t *testing.T) {
	d := NewDirectory(nil)
	d.Register(Identity{ID: "u1", DisplayName: "Old"})
	d.Register(Identity{ID: "u1", DisplayName: "New"})

	peer, ok := d.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, "New", peer.DisplayName)
}
