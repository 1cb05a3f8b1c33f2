// Package store persists the remote message collection using SQLite.
//
// Each conversation key owns an ordered set of messages. Deletion is soft:
// rows are flagged rather than removed, and visible listings always return
// the complete current set for a key so the stream layer can redeliver full
// snapshots on every change.
//
// Use NewSQLiteStore(":memory:") in tests for a throwaway database.
package store
