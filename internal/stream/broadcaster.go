// ABOUTME: In-memory fan-out of message snapshots to conversation subscribers
// ABOUTME: Publishes complete ordered views to all subscribers of a conversation key

package stream

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const (
	// subscriberBufferSize is the channel buffer for each subscriber.
	// Snapshots are complete views, so a dropped one is superseded by the next.
	subscriberBufferSize = 16
)

// broadcaster provides in-memory pub/sub for message snapshots. Subscribers
// register for a conversation key and receive the full visible message set
// whenever the collection changes.
type broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]chan Snapshot // conversationKey -> subID -> ch
	logger      *slog.Logger
}

func newBroadcaster(logger *slog.Logger) *broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &broadcaster{
		subscribers: make(map[string]map[string]chan Snapshot),
		logger:      logger.With("component", "stream.broadcaster"),
	}
}

// subscribe registers a subscriber for snapshots on the given conversation
// key and returns the delivery channel plus a subscription id for removal.
func (b *broadcaster) subscribe(conversationKey string) (chan Snapshot, string) {
	subID := uuid.New().String()
	ch := make(chan Snapshot, subscriberBufferSize)

	b.mu.Lock()
	if _, ok := b.subscribers[conversationKey]; !ok {
		b.subscribers[conversationKey] = make(map[string]chan Snapshot)
	}
	b.subscribers[conversationKey][subID] = ch
	b.mu.Unlock()

	b.logger.Debug("subscriber added",
		"conversation_key", conversationKey,
		"sub_id", subID)

	return ch, subID
}

// publish sends a snapshot to all subscribers of the given conversation key.
// Non-blocking: snapshots are dropped for subscribers whose channels are
// full, which is safe because every snapshot is the complete current view.
// The read lock is held across the sends so unsubscribe cannot close a
// channel while a delivery to it is in flight.
func (b *broadcaster) publish(conversationKey string, snap Snapshot) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers[conversationKey] {
		select {
		case ch <- snap:
			// Sent
		default:
			b.logger.Debug("dropped snapshot for slow subscriber",
				"conversation_key", conversationKey)
		}
	}
}

// unsubscribe removes a subscription and closes its channel. Calling it for
// an already-removed subscription is a no-op.
func (b *broadcaster) unsubscribe(conversationKey, subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.subscribers[conversationKey]
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
		delete(b.subscribers, conversationKey)
	}

	b.logger.Debug("subscriber removed",
		"conversation_key", conversationKey,
		"sub_id", subID)
}

// closeAll shuts down the broadcaster and closes all subscriber channels.
func (b *broadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for convKey, subs := range b.subscribers {
		for subID, ch := range subs {
			close(ch)
			delete(subs, subID)
		}
		delete(b.subscribers, convKey)
	}
}
