// ABOUTME: Message stream adapter over the store: subscribe, send, soft delete
// ABOUTME: Every mutation republishes the complete ordered visible set

package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/onet/emotia/internal/store"
)

// ErrRemoteWrite is returned when a send or soft delete fails to reach the
// remote collection. The caller's local view must not change on send failure
// and must roll back the optimistic removal on delete failure.
var ErrRemoteWrite = errors.New("remote write failed")

// ErrSubscription is returned when a subscription cannot be established or
// loses its backing collection.
var ErrSubscription = errors.New("subscription failed")

// Snapshot is the complete, currently visible, ordered message set for one
// conversation. Subscribers always receive whole snapshots, never diffs.
type Snapshot struct {
	ConversationKey string
	Messages        []*store.ChatMessage
}

// Subscription is a cancelable handle for one conversation's snapshot feed.
// Close is idempotent; no snapshots are delivered after it returns.
type Subscription struct {
	key    string
	id     string
	ch     chan Snapshot
	cancel func()
	once   sync.Once
}

// Snapshots returns the delivery channel. It is closed when the subscription
// is closed.
func (s *Subscription) Snapshots() <-chan Snapshot { return s.ch }

// Key returns the conversation key this subscription was opened for.
func (s *Subscription) Key() string { return s.key }

// Close cancels the subscription. Safe to call multiple times.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}

// Service implements the message stream contract over a Store. Mutations are
// serialized so published snapshots are monotonically consistent: a snapshot
// never regresses an already-applied delete or reorders seen messages.
type Service struct {
	mu     sync.Mutex // serializes subscribe and mutate-then-publish
	store  store.Store
	bc     *broadcaster
	logger *slog.Logger
}

// NewService creates a stream service. Pass nil logger for default.
func NewService(st store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  st,
		bc:     newBroadcaster(logger),
		logger: logger.With("component", "stream"),
	}
}

// Open subscribes to a conversation's snapshot feed. The current snapshot is
// delivered before Open returns, so new subscribers never start from a blank
// view. Holding the mutation lock across subscribe, read and initial delivery
// keeps the first snapshot ordered ahead of any concurrent mutation's publish.
func (s *Service) Open(ctx context.Context, conversationKey string) (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, subID := s.bc.subscribe(conversationKey)

	messages, err := s.store.ListVisible(ctx, conversationKey)
	if err != nil {
		s.bc.unsubscribe(conversationKey, subID)
		return nil, fmt.Errorf("%w: loading initial snapshot: %v", ErrSubscription, err)
	}

	// Initial snapshot; the buffer is empty here so this cannot block.
	ch <- Snapshot{ConversationKey: conversationKey, Messages: messages}

	sub := &Subscription{
		key: conversationKey,
		id:  subID,
		ch:  ch,
	}
	sub.cancel = func() { s.bc.unsubscribe(conversationKey, subID) }
	return sub, nil
}

// Send appends one message to the conversation and republishes the full
// snapshot. The message id and timestamp are filled in if absent.
func (s *Service) Send(ctx context.Context, conversationKey string, msg *store.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	msg.ConversationKey = conversationKey

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SaveMessage(ctx, msg); err != nil {
		return fmt.Errorf("%w: saving message: %v", ErrRemoteWrite, err)
	}

	s.publishSnapshot(conversationKey)
	return nil
}

// SoftDelete marks a message deleted and republishes the snapshot. On error
// the collection is unchanged and the caller must restore any optimistic
// local removal.
func (s *Service) SoftDelete(ctx context.Context, conversationKey, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.MarkDeleted(ctx, conversationKey, messageID); err != nil {
		return fmt.Errorf("%w: deleting message %s: %v", ErrRemoteWrite, messageID, err)
	}

	s.publishSnapshot(conversationKey)
	return nil
}

// Close shuts down all subscriptions. The store is owned by the caller and
// is not closed here.
func (s *Service) Close() {
	s.bc.closeAll()
}

// publishSnapshot re-queries the full visible set and fans it out. Uses its
// own timeout context so persistence of the snapshot read is not tied to the
// mutating request. Must be called with s.mu held.
func (s *Service) publishSnapshot(conversationKey string) {
	readCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := s.store.ListVisible(readCtx, conversationKey)
	if err != nil {
		s.logger.Error("failed to load snapshot after mutation",
			"error", err,
			"conversation_key", conversationKey)
		return
	}

	s.bc.publish(conversationKey, Snapshot{
		ConversationKey: conversationKey,
		Messages:        messages,
	})
}
