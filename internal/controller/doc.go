// Package controller owns the single active conversation. It routes sends
// and deletes to the live stream or the simulated reply engine, projects
// both into one view shape, and guarantees that opening a conversation
// cancels every handle of the previous one.
package controller
