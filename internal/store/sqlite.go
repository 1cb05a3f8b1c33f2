// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides message persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist.
// seq preserves arrival order so equal timestamps sort stably.
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS messages (
			seq              INTEGER PRIMARY KEY AUTOINCREMENT,
			id               TEXT NOT NULL UNIQUE,
			conversation_key TEXT NOT NULL,
			sender_id        TEXT NOT NULL,
			sender_name      TEXT NOT NULL,
			text             TEXT NOT NULL,
			color_tag        TEXT NOT NULL DEFAULT '',
			deleted          INTEGER NOT NULL DEFAULT 0,
			created_at       TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_messages_conversation
			ON messages(conversation_key, created_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// SaveMessage appends a message to its conversation's collection
func (s *SQLiteStore) SaveMessage(ctx context.Context, msg *ChatMessage) error {
	query := `
		INSERT INTO messages (id, conversation_key, sender_id, sender_name, text, color_tag, deleted, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	deleted := 0
	if msg.Deleted {
		deleted = 1
	}

	_, err := s.db.ExecContext(ctx, query,
		msg.ID,
		msg.ConversationKey,
		msg.SenderID,
		msg.SenderName,
		msg.Text,
		msg.ColorTag,
		deleted,
		msg.Timestamp.Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateMessage
		}
		return fmt.Errorf("inserting message: %w", err)
	}

	s.logger.Debug("saved message",
		"message_id", msg.ID,
		"conversation_key", msg.ConversationKey,
	)
	return nil
}

// MarkDeleted soft-deletes a message. The row is retained; the message
// simply stops appearing in visible listings.
func (s *SQLiteStore) MarkDeleted(ctx context.Context, conversationKey, id string) error {
	query := `
		UPDATE messages SET deleted = 1
		WHERE conversation_key = ? AND id = ?
	`

	res, err := s.db.ExecContext(ctx, query, conversationKey, id)
	if err != nil {
		return fmt.Errorf("marking message deleted: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("marked message deleted",
		"message_id", id,
		"conversation_key", conversationKey,
	)
	return nil
}

// ListVisible returns the complete set of non-deleted messages for a
// conversation, ordered by timestamp ascending with arrival order breaking ties.
func (s *SQLiteStore) ListVisible(ctx context.Context, conversationKey string) ([]*ChatMessage, error) {
	query := `
		SELECT id, conversation_key, sender_id, sender_name, text, color_tag, deleted, created_at
		FROM messages
		WHERE conversation_key = ? AND deleted = 0
		ORDER BY created_at ASC, seq ASC
	`

	rows, err := s.db.QueryContext(ctx, query, conversationKey)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []*ChatMessage
	for rows.Next() {
		msg := &ChatMessage{}
		var deleted int
		var timestampStr string

		if err := rows.Scan(
			&msg.ID,
			&msg.ConversationKey,
			&msg.SenderID,
			&msg.SenderName,
			&msg.Text,
			&msg.ColorTag,
			&deleted,
			&timestampStr,
		); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}

		msg.Deleted = deleted != 0
		msg.Timestamp, err = time.Parse(time.RFC3339Nano, timestampStr)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp: %w", err)
		}

		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating message rows: %w", err)
	}

	return messages, nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
