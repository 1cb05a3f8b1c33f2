// Package persona defines the simulated agents: who they are, how the
// primary one answers by keyword rules, and the phrase pools the rest draw
// from. Operators can extend the set with a TOML pack file.
package persona
