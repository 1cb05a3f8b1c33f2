// Package memory persists simulated-agent conversation logs. Each agent owns
// an append-only sequence of turns that is loaded in full when a simulated
// conversation opens and replayed in stored order.
//
// Durability is best effort: the in-memory log is authoritative for the
// session, and flush failures are logged rather than surfaced. Memory is a
// convenience, not a correctness-critical store.
package memory
