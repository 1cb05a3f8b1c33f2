// Package stream adapts the message store into the live subscription
// contract the controller consumes: open a conversation key, receive the
// complete ordered visible message set on every change, append with Send,
// soft-delete with SoftDelete.
//
// Full-snapshot redelivery is deliberate. It costs bandwidth but means
// subscribers never reconcile partial updates, and dropping a snapshot for a
// slow subscriber is harmless because the next one supersedes it.
package stream
