// ABOUTME: Typing-signal adapter: one boolean per participant per conversation
// ABOUTME: Watchers subscribe to a peer's flag; a missing record reads as false

package presence

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const subscriberBufferSize = 8

// Service tracks "is typing" flags per conversation participant and fans
// out changes to watchers. State is in-memory: typing is ephemeral signal,
// not history.
type Service struct {
	mu          sync.Mutex
	typing      map[string]map[string]bool                // conversationKey -> who -> typing
	subscribers map[string]map[string]chan bool           // watchKey -> subID -> ch
	logger      *slog.Logger
}

// Subscription is a cancelable handle for one participant's typing feed.
type Subscription struct {
	ch     chan bool
	cancel func()
	once   sync.Once
}

// Changes returns the delivery channel. The current state is delivered
// first, then every change. Closed when the subscription is closed.
func (s *Subscription) Changes() <-chan bool { return s.ch }

// Close cancels the subscription. Safe to call multiple times.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}

// NewService creates a presence service. Pass nil logger for default.
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		typing:      make(map[string]map[string]bool),
		subscribers: make(map[string]map[string]chan bool),
		logger:      logger.With("component", "presence"),
	}
}

// watchKey scopes a subscription to one participant's flag in one conversation.
func watchKey(conversationKey, who string) string {
	return conversationKey + "/" + who
}

// Open subscribes to the typing flag of one participant in a conversation.
// The current value (false if never set) is delivered before Open returns.
func (s *Service) Open(ctx context.Context, conversationKey, who string) (*Subscription, error) {
	_ = ctx // no remote round trip; signature matches the stream adapter contract

	wk := watchKey(conversationKey, who)
	subID := uuid.New().String()
	ch := make(chan bool, subscriberBufferSize)

	s.mu.Lock()
	if _, ok := s.subscribers[wk]; !ok {
		s.subscribers[wk] = make(map[string]chan bool)
	}
	s.subscribers[wk][subID] = ch
	// Initial delivery under the lock: the fresh buffer cannot block, and
	// no SetTyping can slip a newer value in ahead of the current one.
	ch <- s.typing[conversationKey][who]
	s.mu.Unlock()

	sub := &Subscription{ch: ch}
	sub.cancel = func() { s.unsubscribe(wk, subID) }

	s.logger.Debug("typing watcher added",
		"conversation_key", conversationKey,
		"who", who)
	return sub, nil
}

// SetTyping records a participant's typing flag and notifies watchers.
// Setting the same value twice still notifies; watchers treat the feed as
// state, not edges. Deliveries happen under the lock so a concurrent Close
// cannot close a channel mid-send.
func (s *Service) SetTyping(ctx context.Context, conversationKey, who string, typing bool) error {
	_ = ctx

	wk := watchKey(conversationKey, who)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.typing[conversationKey]; !ok {
		s.typing[conversationKey] = make(map[string]bool)
	}
	s.typing[conversationKey][who] = typing

	for _, ch := range s.subscribers[wk] {
		select {
		case ch <- typing:
		default:
			// Watcher is behind; the latest state will arrive with the next change.
		}
	}
	return nil
}

func (s *Service) unsubscribe(wk, subID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, ok := s.subscribers[wk]
	if !ok {
		return
	}
	ch, exists := subs[subID]
	if !exists {
		return
	}
	delete(subs, subID)
	close(ch)
	if len(subs) == 0 {
		delete(s.subscribers, wk)
	}
}

// Close shuts down all watcher subscriptions.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for wk, subs := range s.subscribers {
		for subID, ch := range subs {
			close(ch)
			delete(subs, subID)
		}
		delete(s.subscribers, wk)
	}
}
