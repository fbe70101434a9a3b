// Package loop drives a repeater from an event source.
//
// A Runner owns the select loop that real programs need around a
// repeater: it applies presses and releases as they arrive, sleeps
// until the earliest repeat deadline, and wakes to deliver repeats.
// Event timestamps come from the source; tick times come from a Clock,
// so replayed sessions and live devices both work.
package loop

import "time"

// Clock supplies the runner's notion of time. Production code uses
// System; tests inject a deterministic clock.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// NewTimer returns a timer that fires once after d.
	NewTimer(d time.Duration) Timer
}

// Timer is a resettable single-shot timer.
type Timer interface {
	// C returns the channel the timer fires on.
	C() <-chan time.Time
	// Reset re-arms the timer to fire after d.
	Reset(d time.Duration)
	// Stop disarms the timer.
	Stop()
}

// System returns a Clock backed by the time package.
func System() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) NewTimer(d time.Duration) Timer {
	return &systemTimer{t: time.NewTimer(d)}
}

type systemTimer struct {
	t *time.Timer
}

func (t *systemTimer) C() <-chan time.Time {
	return t.t.C
}

func (t *systemTimer) Reset(d time.Duration) {
	t.Stop()
	t.t.Reset(d)
}

func (t *systemTimer) Stop() {
	if !t.t.Stop() {
		select {
		case <-t.t.C:
		default:
		}
	}
}
