package typematic

import "time"

// Repeat is the per-delivery repeat control handed to a Handler. It is
// enabled anew for every delivery; calling Disable stops synthesis for
// the key the handler was invoked for.
type Repeat struct {
	disabled bool
}

// Disable turns auto-repeat off for the key of the current delivery.
// The event being delivered still counts; no further events follow for
// that key until it is pressed again.
func (r *Repeat) Disable() {
	r.disabled = true
}

// Disabled reports whether Disable has been called.
func (r *Repeat) Disabled() bool {
	return r.disabled
}

// Handler receives one due event per call: the key it belongs to and a
// repeat control that starts out enabled. The return value is merged
// into Tick's aggregate. A Handler must not call back into the
// Repeater that invoked it.
type Handler[K comparable, R Outcome[R]] func(key K, repeat *Repeat) R

// slot wraps a key's state in the tracking map. A dead slot is a
// tombstone: the key is logically gone but not yet physically removed.
type slot struct {
	live  bool
	state keyState
}

// Repeater tracks pressed keys and synthesizes auto-repeat events for
// them. The key type K is opaque to the Repeater; R is the handler
// result type aggregated by Tick.
//
// A Repeater owns no clock: every operation takes the caller's notion
// of now, and consecutive calls must not go backward in time for any
// one key. It is not safe for concurrent use; the intended owner is a
// single event loop.
type Repeater[K comparable, R Outcome[R]] struct {
	timeout  time.Duration
	interval time.Duration
	keys     map[K]*slot
}

// New returns an empty Repeater. timeout is the delay from a press to
// the first synthesized repeat and interval the spacing of every
// repeat after that. New panics if interval is not positive or timeout
// is negative.
func New[K comparable, R Outcome[R]](timeout, interval time.Duration) *Repeater[K, R] {
	if interval <= 0 {
		panic("typematic: non-positive interval")
	}
	if timeout < 0 {
		panic("typematic: negative timeout")
	}
	return &Repeater[K, R]{
		timeout:  timeout,
		interval: interval,
		keys:     make(map[K]*slot),
	}
}

// Timeout returns the configured delay before the first repeat.
func (r *Repeater[K, R]) Timeout() time.Duration {
	return r.timeout
}

// Interval returns the configured spacing between repeats.
func (r *Repeater[K, R]) Interval() time.Duration {
	return r.interval
}

// Press records a raw press of key observed at now. A press for a key
// already tracked as down is ignored: the Repeater expects a
// repeat-free stream and synthesizes repeats itself.
func (r *Repeater[K, R]) Press(now time.Time, key K) {
	s, ok := r.keys[key]
	if !ok {
		r.keys[key] = &slot{live: true, state: newKeyState(now)}
		return
	}
	if !s.live {
		s.live = true
		s.state = newKeyState(now)
		return
	}
	s.state.press(now)
}

// Release records a raw release of key observed at now. A release for
// an unknown key is ignored; it is legal, for example, after repeat
// was disabled for the key and it was forgotten. A release for a
// tombstoned key completes its removal.
func (r *Repeater[K, R]) Release(now time.Time, key K) {
	s, ok := r.keys[key]
	if !ok {
		return
	}
	if !s.live {
		delete(r.keys, key)
		return
	}
	s.state.release(now, r.timeout, r.interval)
}

// Tick drains every event due at or before now, invoking handler once
// per event, and returns the merged handler results together with the
// deadline at which Tick wants to run next. An unset Deadline means no
// key is waiting and the caller may block indefinitely.
//
// Within one key events are delivered oldest first; the order in which
// distinct keys drain is unspecified. Calling Tick again at the same
// instant with no intervening events delivers nothing.
func (r *Repeater[K, R]) Tick(now time.Time, handler Handler[K, R]) (R, Deadline) {
	var (
		result   R
		next     Deadline
		reap     K
		haveReap bool
	)

	for key, s := range r.keys {
		if !s.live {
			// Tombstone left over from an earlier call. At most one
			// key is physically removed per tick; later ticks reclaim
			// the rest.
			if !haveReap {
				reap, haveReap = key, true
			}
			continue
		}

		for {
			due := s.state.nextDue()
			if !due.IsSet() {
				// Fully drained after release; forget the key.
				s.live = false
				if !haveReap {
					reap, haveReap = key, true
				}
				break
			}
			if !due.Due(now) {
				next = next.Earlier(due)
				break
			}

			var repeat Repeat
			result = result.Merge(handler(key, &repeat))
			if repeat.Disabled() {
				s.live = false
				if !haveReap {
					reap, haveReap = key, true
				}
				break
			}
			s.state.advance(r.timeout, r.interval)
		}
	}

	if haveReap {
		delete(r.keys, reap)
	}
	return result, next
}

// Clear forgets every tracked key without invoking any handler. Useful
// on focus loss, where matching releases may never arrive.
func (r *Repeater[K, R]) Clear() {
	clear(r.keys)
}

// Len returns the number of keys currently tracked as down or still
// draining. Tombstoned keys are not counted.
func (r *Repeater[K, R]) Len() int {
	n := 0
	for _, s := range r.keys {
		if s.live {
			n++
		}
	}
	return n
}
