// Package presence carries the per-conversation typing indicator. It mirrors
// the message stream's subscription shape with a single boolean payload.
package presence
