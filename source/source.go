// Package source defines the raw input stream consumed by the repeat
// loop, together with in-memory implementations for tests and replays.
//
// The subpackages provide real sources: evdev reads Linux input
// devices, replay plays recorded sessions, script runs Lua event
// scripts, and remote subscribes to a websocket broadcaster.
package source

import "time"

// Event is one raw, repeat-free key transition.
type Event[K comparable] struct {
	// Time is when the transition happened.
	Time time.Time

	// Key identifies the key that changed.
	Key K

	// Pressed is true for a press, false for a release.
	Pressed bool
}

// Source is a stream of raw key transitions. Implementations deliver
// events in non-decreasing time order on the channel returned by
// Events and close it when the stream ends or Close is called. Close
// is idempotent.
type Source[K comparable] interface {
	Events() <-chan Event[K]
	Close() error
}
