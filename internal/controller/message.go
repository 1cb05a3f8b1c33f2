// ABOUTME: View projection: remote messages and simulated turns rendered
// ABOUTME: through one shape, with optional text enrichment applied

package controller

import (
	"fmt"
	"time"

	"github.com/onet/emotia/internal/enrich"
	"github.com/onet/emotia/internal/identity"
	"github.com/onet/emotia/internal/memory"
	"github.com/onet/emotia/internal/store"
)

// StatusSent is the only status a message carries inside an emitted view;
// pending-delete messages are filtered out before projection and deleted
// ones never leave the remote collection.
const StatusSent = "sent"

// Message is one rendered entry in the conversation view, regardless of
// whether it originated remotely or from a simulated turn log.
type Message struct {
	ID          string
	SenderID    string
	SenderName  string
	Self        bool
	Text        string
	ColorTag    string
	Status      string
	Timestamp   time.Time
	Tone        enrich.Tone
	Suggestions []string
}

// Enricher optionally decorates a message's text at projection time.
type Enricher func(text string) enrich.Result

// projectLive renders a remote snapshot, skipping messages with a delete in
// flight.
func (c *Controller) projectLive(msgs []*store.ChatMessage) []Message {
	view := make([]Message, 0, len(msgs))
	for _, msg := range msgs {
		if c.pendingDel[msg.ID] {
			continue
		}
		m := Message{
			ID:         msg.ID,
			SenderID:   msg.SenderID,
			SenderName: msg.SenderName,
			Self:       msg.SenderID == c.self.ID,
			Text:       msg.Text,
			ColorTag:   msg.ColorTag,
			Status:     StatusSent,
			Timestamp:  msg.Timestamp,
		}
		c.decorate(&m)
		view = append(view, m)
	}
	return view
}

// projectTurns renders a simulated agent's turn log. Turn ids are positional;
// simulated turns are never addressed individually.
func (c *Controller) projectTurns(peer identity.Identity, turns []memory.Turn) []Message {
	view := make([]Message, 0, len(turns))
	for i, turn := range turns {
		m := Message{
			ID:        fmt.Sprintf("turn-%d", i),
			Text:      turn.Text,
			Status:    StatusSent,
			Timestamp: turn.Timestamp,
		}
		if turn.Role == memory.RoleUser {
			m.SenderID = c.self.ID
			m.SenderName = c.self.DisplayName
			m.Self = true
			m.ColorTag = selfColorTag
		} else {
			m.SenderID = peer.ID
			m.SenderName = peer.DisplayName
			m.ColorTag = peer.ColorTag
		}
		c.decorate(&m)
		view = append(view, m)
	}
	return view
}

// decorate applies the optional enricher. Display text stays as typed; only
// tone and emoji suggestions are attached.
func (c *Controller) decorate(m *Message) {
	if c.enricher == nil {
		return
	}
	res := c.enricher(m.Text)
	m.Tone = res.Tone
	m.Suggestions = res.Suggestions
}
