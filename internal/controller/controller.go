// ABOUTME: Conversation controller: owns the single active conversation
// ABOUTME: Routes live vs simulated, enforces the one-subscription invariant

package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/onet/emotia/internal/conversation"
	"github.com/onet/emotia/internal/identity"
	"github.com/onet/emotia/internal/memory"
	"github.com/onet/emotia/internal/presence"
	"github.com/onet/emotia/internal/reply"
	"github.com/onet/emotia/internal/store"
	"github.com/onet/emotia/internal/stream"
)

// ErrNotDeletable is returned when Delete is called in a simulated
// conversation; turns are not user-deletable.
var ErrNotDeletable = errors.New("simulated turns cannot be deleted")

// selfColorTag is the bubble color for the current user's own messages.
const selfColorTag = "#6c63ff"

// defaultDeleteGrace is how long the optimistic removal waits before the
// remote soft delete is issued. Bounded short; it only exists so exit
// animations can run.
const defaultDeleteGrace = 380 * time.Millisecond

// Mode says whether the active conversation talks to a live peer over the
// remote stream or to a locally simulated agent.
type Mode string

const (
	ModeLive      Mode = "live"
	ModeSimulated Mode = "simulated"
)

// Session describes one active conversation. It is an immutable value:
// every Open replaces it wholesale, never mutates it in place, so tests can
// hold snapshots across transitions.
type Session struct {
	Peer  identity.Identity
	Key   string
	Mode  Mode
	Epoch uint64
}

// MessageStream is what the controller needs from the remote message
// collection.
type MessageStream interface {
	Open(ctx context.Context, conversationKey string) (*stream.Subscription, error)
	Send(ctx context.Context, conversationKey string, msg *store.ChatMessage) error
	SoftDelete(ctx context.Context, conversationKey, messageID string) error
}

// PresenceStream is what the controller needs from the typing signal.
type PresenceStream interface {
	Open(ctx context.Context, conversationKey, who string) (*presence.Subscription, error)
	SetTyping(ctx context.Context, conversationKey, who string, typing bool) error
}

// MemoryStore is what the controller needs from agent memory.
type MemoryStore interface {
	Load(agentID string) []memory.Turn
	Append(agentID string, turn memory.Turn)
}

// ReplyEngine generates simulated agent responses.
type ReplyEngine interface {
	Reply(agentID, incoming string) reply.Reply
}

// RenderSink receives view updates. Calls arrive serialized; implementations
// must not call back into the controller from inside a callback.
type RenderSink interface {
	ViewUpdated(messages []Message)
	TypingChanged(typing bool)
	DeleteFailed(messageID string, err error)
}

// Controller drives the conversation state machine. At most one
// conversation is active; opening a new one cancels the previous
// subscriptions before any new handle exists.
type Controller struct {
	mu       sync.Mutex
	self     identity.Identity
	streams  MessageStream
	presence PresenceStream
	memory   MemoryStore
	engine   ReplyEngine
	sink     RenderSink
	enricher Enricher
	logger   *slog.Logger

	deleteGrace time.Duration

	epoch        uint64
	session      *Session
	msgSub       *stream.Subscription
	typingSub    *presence.Subscription
	lastSnapshot []*store.ChatMessage
	pendingDel   map[string]bool
	replySeq     uint64
	replyTimers  map[uint64]*time.Timer
	deleteTimers map[string]*time.Timer
	peerTyping   bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithEnricher installs the optional text-enrichment transform applied at
// projection time.
func WithEnricher(e Enricher) Option {
	return func(c *Controller) { c.enricher = e }
}

// WithDeleteGrace overrides the optimistic-delete grace interval. Values
// above one second are capped; the grace window is bounded by contract.
func WithDeleteGrace(d time.Duration) Option {
	return func(c *Controller) {
		if d <= 0 {
			return
		}
		if d > time.Second {
			d = time.Second
		}
		c.deleteGrace = d
	}
}

// New creates a controller in the Idle state. Pass nil logger for default.
func New(self identity.Identity, streams MessageStream, pres PresenceStream, mem MemoryStore, engine ReplyEngine, sink RenderSink, logger *slog.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		self:         self,
		streams:      streams,
		presence:     pres,
		memory:       mem,
		engine:       engine,
		sink:         sink,
		logger:       logger.With("component", "controller"),
		deleteGrace:  defaultDeleteGrace,
		pendingDel:   make(map[string]bool),
		replyTimers:  make(map[uint64]*time.Timer),
		deleteTimers: make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns a copy of the active session, or nil when idle.
func (c *Controller) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// Open activates a conversation with peer, tearing down any previous one
// first. The single-subscription invariant holds even when Open fails: old
// handles are always canceled before new ones are attempted.
func (c *Controller) Open(ctx context.Context, peer identity.Identity) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teardownLocked()
	c.session = nil
	c.epoch++
	epoch := c.epoch

	key := conversation.Key(c.self.ID, peer.ID)

	if peer.IsSimulated() {
		c.session = &Session{Peer: peer, Key: key, Mode: ModeSimulated, Epoch: epoch}
		turns := c.memory.Load(peer.ID)
		c.sink.ViewUpdated(c.projectTurns(peer, turns))
		c.logger.Info("conversation opened",
			"peer", peer.ID,
			"mode", ModeSimulated,
			"replayed_turns", len(turns))
		return nil
	}

	msgSub, err := c.streams.Open(ctx, key)
	if err != nil {
		// Old handles are gone and the session is cleared; a failed
		// switch lands in Idle rather than half-open.
		return fmt.Errorf("opening message stream: %w", err)
	}
	typingSub, err := c.presence.Open(ctx, key, peer.ID)
	if err != nil {
		msgSub.Close()
		return fmt.Errorf("opening presence stream: %w", err)
	}

	c.session = &Session{Peer: peer, Key: key, Mode: ModeLive, Epoch: epoch}
	c.msgSub = msgSub
	c.typingSub = typingSub

	go c.forwardSnapshots(epoch, msgSub)
	go c.forwardTyping(epoch, typingSub)

	c.logger.Info("conversation opened", "peer", peer.ID, "mode", ModeLive, "key", key)
	return nil
}

// Send delivers one line of text into the active conversation. Empty text
// and the Idle state are no-ops. In live mode a failed remote write is
// returned and the view stays unchanged; the caller re-offers the text.
func (c *Controller) Send(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil || strings.TrimSpace(text) == "" {
		return nil
	}

	if c.session.Mode == ModeLive {
		msg := &store.ChatMessage{
			SenderID:   c.self.ID,
			SenderName: c.self.DisplayName,
			Text:       text,
			ColorTag:   selfColorTag,
		}
		if err := c.streams.Send(ctx, c.session.Key, msg); err != nil {
			c.logger.Warn("send failed", "error", err, "key", c.session.Key)
			return err
		}
		return nil
	}

	peer := c.session.Peer
	now := time.Now().UTC()
	c.memory.Append(peer.ID, memory.Turn{Role: memory.RoleUser, Text: text, Timestamp: now})
	c.sink.ViewUpdated(c.projectTurns(peer, c.memory.Load(peer.ID)))

	rep := c.engine.Reply(peer.ID, text)
	c.setTypingLocked(true)

	epoch := c.epoch
	c.replySeq++
	seq := c.replySeq
	c.replyTimers[seq] = time.AfterFunc(rep.ThinkDelay, func() {
		c.deliverReply(epoch, seq, peer, rep)
	})
	return nil
}

// deliverReply runs when the think delay elapses. A reply whose
// conversation has been replaced is persisted to the agent's log but never
// emitted; the typing indicator it would clear belongs to a dead view.
func (c *Controller) deliverReply(epoch, seq uint64, peer identity.Identity, rep reply.Reply) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.replyTimers, seq)

	turn := memory.Turn{Role: memory.RoleAgent, Text: rep.Text, Timestamp: time.Now().UTC()}
	c.memory.Append(peer.ID, turn)

	if epoch != c.epoch || c.session == nil || c.session.Peer.ID != peer.ID {
		c.logger.Debug("orphaned reply persisted without emission", "agent_id", peer.ID)
		return
	}

	c.setTypingLocked(false)
	c.sink.ViewUpdated(c.projectTurns(peer, c.memory.Load(peer.ID)))
}

// Delete removes one of the user's own live messages. The view drops the
// message immediately; the remote soft delete is issued after a short grace
// interval, and failure rolls the message back into the view.
func (c *Controller) Delete(messageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil
	}
	if c.session.Mode != ModeLive {
		return ErrNotDeletable
	}
	if c.pendingDel[messageID] {
		return nil
	}

	found := false
	for _, msg := range c.lastSnapshot {
		if msg.ID == messageID {
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	c.pendingDel[messageID] = true
	c.sink.ViewUpdated(c.projectLive(c.lastSnapshot))

	epoch := c.epoch
	key := c.session.Key
	c.deleteTimers[messageID] = time.AfterFunc(c.deleteGrace, func() {
		c.finishDelete(epoch, key, messageID)
	})
	return nil
}

// finishDelete performs the remote soft delete after the grace interval.
func (c *Controller) finishDelete(epoch uint64, key, messageID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := c.streams.SoftDelete(ctx, key, messageID)

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.deleteTimers, messageID)

	if epoch != c.epoch {
		// Conversation switched while the grace timer ran; nothing to
		// roll back in the current view.
		return
	}

	if err != nil {
		delete(c.pendingDel, messageID)
		c.logger.Warn("delete failed, restoring message", "error", err, "message_id", messageID)
		c.sink.DeleteFailed(messageID, err)
		c.sink.ViewUpdated(c.projectLive(c.lastSnapshot))
	}
	// On success the republished snapshot confirms the removal.
}

// SetTyping publishes the current user's typing flag for the active live
// conversation. No-op otherwise.
func (c *Controller) SetTyping(ctx context.Context, typing bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil || c.session.Mode != ModeLive {
		return nil
	}
	return c.presence.SetTyping(ctx, c.session.Key, c.self.ID, typing)
}

// Close tears the active conversation down and returns to Idle. Idempotent:
// closing an idle controller has no side effects.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return
	}

	c.teardownLocked()
	c.session = nil
	c.sink.ViewUpdated(nil)
	c.logger.Info("conversation closed")
}

// teardownLocked cancels subscriptions and timers from any previous
// conversation. Must run before a new session is installed so that no stale
// handle outlives its view. Must be called with c.mu held.
func (c *Controller) teardownLocked() {
	if c.msgSub != nil {
		c.msgSub.Close()
		c.msgSub = nil
	}
	if c.typingSub != nil {
		c.typingSub.Close()
		c.typingSub = nil
	}
	for seq, timer := range c.replyTimers {
		timer.Stop()
		delete(c.replyTimers, seq)
	}
	for id, timer := range c.deleteTimers {
		timer.Stop()
		delete(c.deleteTimers, id)
	}
	c.pendingDel = make(map[string]bool)
	c.lastSnapshot = nil
	c.setTypingLocked(false)
}

// forwardSnapshots pumps message snapshots into the controller until the
// subscription channel closes.
func (c *Controller) forwardSnapshots(epoch uint64, sub *stream.Subscription) {
	for snap := range sub.Snapshots() {
		c.applySnapshot(epoch, snap)
	}
}

// applySnapshot installs a remote snapshot if it still belongs to the
// active conversation. Snapshots tagged with a replaced epoch or a foreign
// key are dropped: a defensive guard against adapters that race Close.
func (c *Controller) applySnapshot(epoch uint64, snap stream.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch || c.session == nil || snap.ConversationKey != c.session.Key {
		c.logger.Debug("ignoring stale snapshot", "key", snap.ConversationKey)
		return
	}

	c.lastSnapshot = snap.Messages

	// A confirmed removal makes its pending-delete mark obsolete.
	present := make(map[string]bool, len(snap.Messages))
	for _, msg := range snap.Messages {
		present[msg.ID] = true
	}
	for id := range c.pendingDel {
		if !present[id] {
			delete(c.pendingDel, id)
		}
	}

	c.sink.ViewUpdated(c.projectLive(snap.Messages))
}

// forwardTyping pumps presence changes into the controller.
func (c *Controller) forwardTyping(epoch uint64, sub *presence.Subscription) {
	for typing := range sub.Changes() {
		c.applyTyping(epoch, typing)
	}
}

func (c *Controller) applyTyping(epoch uint64, typing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch || c.session == nil {
		return
	}
	c.setTypingLocked(typing)
}

// setTypingLocked emits the indicator only on change, so a reply delivery
// clears it exactly once. Must be called with c.mu held.
func (c *Controller) setTypingLocked(typing bool) {
	if c.peerTyping == typing {
		return
	}
	c.peerTyping = typing
	c.sink.TypingChanged(typing)
}
