package typematic

import "time"

// Deadline is an optional instant. The zero Deadline is unset and
// means there is nothing to wait for. Presence is tracked explicitly
// rather than through the zero time.Time, which is a legitimate
// timestamp for callers running on a simulated clock.
type Deadline struct {
	at  time.Time
	set bool
}

// At returns a Deadline set to t.
func At(t time.Time) Deadline {
	return Deadline{at: t, set: true}
}

// IsSet reports whether d holds an instant.
func (d Deadline) IsSet() bool {
	return d.set
}

// Time returns the instant d holds, or the zero time if d is unset.
func (d Deadline) Time() time.Time {
	return d.at
}

// Earlier returns the stricter of d and o. An unset Deadline always
// loses to a set one; two unset Deadlines merge to unset.
func (d Deadline) Earlier(o Deadline) Deadline {
	switch {
	case !d.set:
		return o
	case !o.set:
		return d
	case o.at.Before(d.at):
		return o
	default:
		return d
	}
}

// Due reports whether d is set and at or before now. An unset Deadline
// is never due.
func (d Deadline) Due(now time.Time) bool {
	return d.set && !d.at.After(now)
}

// Sub returns the duration from now until the deadline, or zero if d
// is unset or already due.
func (d Deadline) Sub(now time.Time) time.Duration {
	if !d.set {
		return 0
	}
	if w := d.at.Sub(now); w > 0 {
		return w
	}
	return 0
}

// String returns the instant in RFC3339Nano form, or "none" if unset.
func (d Deadline) String() string {
	if !d.set {
		return "none"
	}
	return d.at.Format(time.RFC3339Nano)
}
