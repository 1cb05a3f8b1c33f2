// ABOUTME: Tests for the SQLite message store
// ABOUTME: Covers save, soft delete, visible listing order and error cases

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testMessage(id, key, text string, ts time.Time) *ChatMessage {
	return &ChatMessage{
		ID:              id,
		ConversationKey: key,
		SenderID:        "user-1",
		SenderName:      "User One",
		Text:            text,
		ColorTag:        "#6c63ff",
		Timestamp:       ts,
	}
}

func TestSQLiteStore_SaveAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveMessage(ctx, testMessage("m2", "a__b", "second", base.Add(time.Minute))))
	require.NoError(t, s.SaveMessage(ctx, testMessage("m1", "a__b", "first", base)))

	msgs, err := s.ListVisible(ctx, "a__b")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, "second", msgs[1].Text)
	assert.Equal(t, "#6c63ff", msgs[0].ColorTag)
}

func TestSQLiteStore_EqualTimestampsKeepArrivalOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, id := range []string{"m1", "m2", "m3"} {
		require.NoError(t, s.SaveMessage(ctx, testMessage(id, "a__b", id, ts)))
	}

	msgs, err := s.ListVisible(ctx, "a__b")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "m2", msgs[1].ID)
	assert.Equal(t, "m3", msgs[2].ID)
}

func TestSQLiteStore_MarkDeletedHidesMessage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ts := time.Now().UTC()
	require.NoError(t, s.SaveMessage(ctx, testMessage("m1", "a__b", "hello", ts)))
	require.NoError(t, s.SaveMessage(ctx, testMessage("m2", "a__b", "world", ts.Add(time.Second))))

	require.NoError(t, s.MarkDeleted(ctx, "a__b", "m1"))

	msgs, err := s.ListVisible(ctx, "a__b")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "m2", msgs[0].ID)
}

func TestSQLiteStore_MarkDeletedMissing(t *testing.T) {
	s := newTestStore(t)

	err := s.MarkDeleted(context.Background(), "a__b", "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_DuplicateMessageID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	msg := testMessage("m1", "a__b", "hello", time.Now().UTC())
	require.NoError(t, s.SaveMessage(ctx, msg))
	err := s.SaveMessage(ctx, msg)
	assert.ErrorIs(t, err, ErrDuplicateMessage)
}

func TestSQLiteStore_ConversationsAreIsolated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ts := time.Now().UTC()
	require.NoError(t, s.SaveMessage(ctx, testMessage("m1", "a__b", "for ab", ts)))
	require.NoError(t, s.SaveMessage(ctx, testMessage("m2", "a__c", "for ac", ts)))

	msgs, err := s.ListVisible(ctx, "a__b")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "for ab", msgs[0].Text)
}

func TestSQLiteStore_ListEmptyConversation(t *testing.T) {
	s := newTestStore(t)

	msgs, err := s.ListVisible(context.Background(), "nobody__talks")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
