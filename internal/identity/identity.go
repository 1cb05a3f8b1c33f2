// ABOUTME: Identity types and the peer directory for the chat client
// ABOUTME: Defines live vs simulated peers and the built-in simulated set

package identity

import (
	"sort"
	"strings"
	"sync"
)

// Kind distinguishes live human peers from locally simulated agents.
type Kind string

const (
	KindLive      Kind = "live"
	KindSimulated Kind = "simulated"
)

// Identity is one addressable party. Immutable for the session.
type Identity struct {
	ID          string
	DisplayName string
	Kind        Kind
	ColorTag    string // hex color used for message bubbles
	MoodEmoji   string
	MoodKey     string
}

// IsSimulated reports whether the identity is a locally simulated agent.
func (i Identity) IsSimulated() bool {
	return i.Kind == KindSimulated
}

// Directory holds the set of addressable peers: a fixed simulated set plus
// whatever live identities the embedding application registers.
type Directory struct {
	mu    sync.RWMutex
	peers map[string]Identity
}

// NewDirectory creates a directory seeded with the given identities.
func NewDirectory(seed []Identity) *Directory {
	d := &Directory{peers: make(map[string]Identity, len(seed))}
	for _, id := range seed {
		d.peers[id.ID] = id
	}
	return d
}

// Register adds or replaces a peer entry.
func (d *Directory) Register(id Identity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.peers[id.ID] = id
}

// Lookup returns the identity for the given id.
func (d *Directory) Lookup(id string) (Identity, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	peer, ok := d.peers[id]
	return peer, ok
}

// List returns all peers except the one with excludeID, sorted by display
// name. The exclusion keeps the current user out of their own peer list.
func (d *Directory) List(excludeID string) []Identity {
	d.mu.RLock()
	defer d.mu.RUnlock()

	peers := make([]Identity, 0, len(d.peers))
	for _, p := range d.peers {
		if p.ID == excludeID {
			continue
		}
		peers = append(peers, p)
	}
	sort.Slice(peers, func(i, j int) bool {
		return strings.ToLower(peers[i].DisplayName) < strings.ToLower(peers[j].DisplayName)
	})
	return peers
}
