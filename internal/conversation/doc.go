// Package conversation derives canonical conversation keys. A key identifies
// the single message stream shared by two participants regardless of which
// side computes it.
package conversation
