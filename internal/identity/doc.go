// Package identity defines the parties a conversation can be held with:
// live peers reachable over the remote stream and simulated agents whose
// replies are generated locally.
package identity
