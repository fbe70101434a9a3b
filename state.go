package typematic

import "time"

// phase identifies the stage of the repeat lifecycle a key is in.
type phase uint8

const (
	// phasePressed: key is down, the repeat threshold not yet crossed.
	phasePressed phase = iota

	// phaseRepeated: key is down and repeating at the steady interval.
	phaseRepeated

	// phaseReleasePending: key was released with undelivered events
	// still queued; once they drain the key can be forgotten.
	phaseReleasePending
)

// keyState tracks one key's progress toward and through auto-repeat.
//
// backlog counts events owed to the handler but not yet delivered.
// pressedAt is the timestamp of the originating press. nextRepeat is
// meaningful only in phaseRepeated.
type keyState struct {
	phase      phase
	pressedAt  time.Time
	nextRepeat time.Time
	backlog    int
}

// newKeyState returns the state for a key freshly pressed at now.
func newKeyState(now time.Time) keyState {
	return keyState{phase: phasePressed, pressedAt: now}
}

// press records a press event. A press while the key is already down
// is hardware-level repeat noise and is ignored; repeats are
// synthesized here, never taken from the system. A press on a released
// key whose backlog has not drained yet restarts the timing clock and
// carries the backlog over.
func (s *keyState) press(now time.Time) {
	if s.phase != phaseReleasePending {
		return
	}
	*s = keyState{
		phase:     phasePressed,
		pressedAt: now,
		backlog:   s.backlog,
	}
}

// release records a release event. The originating press counts as one
// undelivered event, as does every repeat whose deadline passed before
// the release. Releasing a key that is already in phaseReleasePending
// means the caller replayed events out of order and panics.
func (s *keyState) release(now time.Time, timeout, interval time.Duration) {
	switch s.phase {
	case phasePressed:
		next := s.pressedAt.Add(timeout)
		if now.Before(next) {
			s.phase = phaseReleasePending
			s.backlog++
			return
		}
		// The release straddles the repeat threshold: the key spent
		// time in steady-state repeat that was never observed. Promote
		// it and fall through to the repeated-state accounting.
		s.phase = phaseRepeated
		s.nextRepeat = next
		s.backlog++
		fallthrough

	case phaseRepeated:
		// One event for crossing nextRepeat itself, plus one per full
		// interval elapsed since. A release at exactly nextRepeat does
		// not count the repeat due at that instant.
		if elapsed := now.Sub(s.nextRepeat); elapsed > 0 {
			s.backlog += int(elapsed/interval) + 1
		}
		s.phase = phaseReleasePending

	case phaseReleasePending:
		panic("typematic: release for a key already released")
	}
}

// nextDue returns when the next event for this key is owed. An unset
// Deadline means the key has fully drained and can be forgotten.
func (s *keyState) nextDue() Deadline {
	switch s.phase {
	case phasePressed:
		return At(s.pressedAt)
	case phaseRepeated:
		if s.backlog > 0 {
			return At(s.pressedAt)
		}
		return At(s.nextRepeat)
	default:
		if s.backlog > 0 {
			return At(s.pressedAt)
		}
		return Deadline{}
	}
}

// advance consumes one delivered event. It must be called only after
// the deadline reported by nextDue has been reached.
func (s *keyState) advance(timeout, interval time.Duration) {
	switch s.phase {
	case phasePressed:
		if s.backlog > 0 {
			s.backlog--
			return
		}
		// The original press was just delivered; the timeout now runs.
		s.phase = phaseRepeated
		s.nextRepeat = s.pressedAt.Add(timeout)

	case phaseRepeated:
		if s.backlog > 0 {
			s.backlog--
			return
		}
		s.nextRepeat = s.nextRepeat.Add(interval)

	case phaseReleasePending:
		if s.backlog > 0 {
			s.backlog--
		}
	}
}
