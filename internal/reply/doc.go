// Package reply generates scripted responses for simulated agents together
// with a randomized think delay the controller schedules the reply after.
package reply
