// ABOUTME: Store interface and data types for the remote message collection
// ABOUTME: Defines ChatMessage and the Store interface for message persistence

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateMessage is returned when saving a message whose id already exists
var ErrDuplicateMessage = errors.New("message already exists")

// ChatMessage is one message in a conversation's remote collection.
// Deleted messages keep their row (soft delete) and are excluded from
// visible listings.
type ChatMessage struct {
	ID              string
	ConversationKey string
	SenderID        string
	SenderName      string
	Text            string
	ColorTag        string // bubble color carried per message
	Deleted         bool
	Timestamp       time.Time
}

// Store defines the interface for message persistence. Visible listings are
// always the complete current set for a key, ordered by timestamp with
// arrival order breaking ties.
type Store interface {
	SaveMessage(ctx context.Context, msg *ChatMessage) error
	MarkDeleted(ctx context.Context, conversationKey, id string) error
	ListVisible(ctx context.Context, conversationKey string) ([]*ChatMessage, error)

	// Close releases any resources held by the store
	Close() error
}
