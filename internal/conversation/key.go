// ABOUTME: Canonical conversation key derivation from two participant ids
// ABOUTME: Order-independent so both parties resolve to the same stream

package conversation

import "strings"

// keySeparator joins the two sorted participant ids. Double underscore keeps
// the key readable while staying unambiguous for plain ids.
const keySeparator = "__"

// Key returns the canonical conversation key for two participant ids.
// It is commutative: Key(a, b) == Key(b, a).
func Key(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + keySeparator + b
}

// Participants splits a conversation key back into its two participant ids.
// The second return is false if the key was not produced by Key.
func Participants(key string) (string, string, bool) {
	parts := strings.SplitN(key, keySeparator, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
