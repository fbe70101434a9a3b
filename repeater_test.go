package typematic

import (
	"testing"
	"time"
)

// at returns baseTime shifted by the given number of seconds.
func at(seconds float64) time.Time {
	return baseTime.Add(time.Duration(seconds * float64(time.Second)))
}

// counter builds a handler that counts deliveries per key and reports
// every delivery as a change.
func counter(counts map[rune]int) Handler[rune, Changed] {
	return func(key rune, _ *Repeat) Changed {
		counts[key]++
		return true
	}
}

func TestTickOnEmpty(t *testing.T) {
	rep := New[rune, Changed](testTimeout, testInterval)

	change, next := rep.Tick(at(0), func(rune, *Repeat) Changed {
		t.Errorf("handler invoked with no keys tracked")
		return false
	})
	if change {
		t.Errorf("change = %v, want false", change)
	}
	if next.IsSet() {
		t.Errorf("next wake = %v, want none", next)
	}
}

func TestReleaseUntrackedKey(t *testing.T) {
	rep := New[rune, Changed](testTimeout, testInterval)
	rep.Release(at(0), 'x')

	change, next := rep.Tick(at(1), func(rune, *Repeat) Changed {
		t.Errorf("handler invoked for a key never pressed")
		return false
	})
	if change || next.IsSet() {
		t.Errorf("Tick() = (%v, %v), want (false, none)", change, next)
	}
}

// A press directly followed by a release, with no tick in between,
// still delivers the press exactly once.
func TestPressReleaseWithoutTick(t *testing.T) {
	counts := make(map[rune]int)
	rep := New[rune, Changed](testTimeout, testInterval)

	rep.Press(at(0), 'l')
	rep.Release(at(1), 'l')

	change, next := rep.Tick(at(1), counter(counts))
	if counts['l'] != 1 {
		t.Errorf("deliveries = %d, want 1", counts['l'])
	}
	if !change {
		t.Errorf("change = %v, want true", change)
	}
	if next.IsSet() {
		t.Errorf("next wake = %v, want none", next)
	}

	change, next = rep.Tick(at(2), counter(counts))
	if counts['l'] != 1 {
		t.Errorf("deliveries after drain = %d, want 1", counts['l'])
	}
	if change {
		t.Errorf("change = %v, want false", change)
	}
	if next.IsSet() {
		t.Errorf("next wake = %v, want none", next)
	}
}

// Press and release at the very same instant still count the press.
func TestSameInstantPressRelease(t *testing.T) {
	counts := make(map[rune]int)
	rep := New[rune, Changed](testTimeout, testInterval)

	rep.Press(at(0), 'k')
	rep.Release(at(0), 'k')

	if _, next := rep.Tick(at(0), counter(counts)); next.IsSet() {
		t.Errorf("next wake = %v, want none", next)
	}
	if counts['k'] != 1 {
		t.Errorf("deliveries = %d, want 1", counts['k'])
	}
}

// Re-pressing a key whose release backlog has not drained restarts the
// timing from the new press but keeps the backlog.
func TestPressAfterReleasePending(t *testing.T) {
	counts := make(map[rune]int)
	rep := New[rune, Changed](testTimeout, testInterval)

	rep.Press(at(0), 'h')
	rep.Release(at(1), 'h')
	rep.Press(at(2), 'h')

	change, next := rep.Tick(at(2), counter(counts))
	if counts['h'] != 2 {
		t.Errorf("deliveries = %d, want 2", counts['h'])
	}
	if !change {
		t.Errorf("change = %v, want true", change)
	}
	if want := At(at(7)); next != want {
		t.Errorf("next wake = %v, want %v", next, want)
	}

	change, next = rep.Tick(at(3), counter(counts))
	if counts['h'] != 2 {
		t.Errorf("deliveries = %d, want 2", counts['h'])
	}
	if change {
		t.Errorf("change = %v, want false", change)
	}
	if want := At(at(7)); next != want {
		t.Errorf("next wake = %v, want %v", next, want)
	}
}

// A release long after the repeat threshold synthesizes the repeats
// that fell due while the key was down.
func TestReleaseAfterRepeatBegan(t *testing.T) {
	rep := New[rune, Count](testTimeout, testInterval)

	rep.Press(at(0), 'h')
	// Released two intervals past the threshold: the press plus the
	// repeats at 5s, 6s and 7s are all owed.
	rep.Release(at(7), 'h')

	got, next := rep.Tick(at(8), func(rune, *Repeat) Count { return 1 })
	if got != 4 {
		t.Errorf("deliveries = %d, want 4", got)
	}
	if next.IsSet() {
		t.Errorf("next wake = %v, want none", next)
	}
}

// Steady-state cadence: one delivery per tick when ticking exactly on
// the deadline, with the wake-up advancing by one interval.
func TestSteadyStateCadence(t *testing.T) {
	counts := make(map[rune]int)
	rep := New[rune, Changed](testTimeout, testInterval)

	rep.Press(at(0), 'j')

	_, next := rep.Tick(at(0), counter(counts))
	if counts['j'] != 1 {
		t.Errorf("deliveries = %d, want 1", counts['j'])
	}
	if want := At(at(5)); next != want {
		t.Errorf("next wake = %v, want %v", next, want)
	}

	_, next = rep.Tick(at(5), counter(counts))
	if counts['j'] != 2 {
		t.Errorf("deliveries = %d, want 2", counts['j'])
	}
	if want := At(at(6)); next != want {
		t.Errorf("next wake = %v, want %v", next, want)
	}

	_, next = rep.Tick(at(6), counter(counts))
	if counts['j'] != 3 {
		t.Errorf("deliveries = %d, want 3", counts['j'])
	}
	if want := At(at(7)); next != want {
		t.Errorf("next wake = %v, want %v", next, want)
	}
}

// The full lifecycle across several keys, mirroring an event loop that
// polls irregularly.
func TestRepeatLifecycle(t *testing.T) {
	counts := make(map[rune]int)
	handler := func(key rune, repeat *Repeat) Changed {
		counts[key]++
		if key == 'f' {
			repeat.Disable()
		}
		return true
	}

	rep := New[rune, Changed](testTimeout, testInterval)

	change, next := rep.Tick(at(0), handler)
	if change || next.IsSet() {
		t.Errorf("empty Tick() = (%v, %v), want (false, none)", change, next)
	}

	rep.Press(at(0), '\n')
	change, next = rep.Tick(at(0), handler)
	if counts['\n'] != 1 || !change {
		t.Errorf("enter = %d change = %v, want 1 true", counts['\n'], change)
	}
	if want := At(at(5)); next != want {
		t.Errorf("next wake = %v, want %v", next, want)
	}

	// Ticking again at the same instant delivers nothing.
	change, next = rep.Tick(at(0), handler)
	if counts['\n'] != 1 || change {
		t.Errorf("enter = %d change = %v, want 1 false", counts['\n'], change)
	}
	if want := At(at(5)); next != want {
		t.Errorf("next wake = %v, want %v", next, want)
	}

	// A duplicate press while down is hardware-repeat noise.
	rep.Press(at(0), '\n')
	change, next = rep.Tick(at(0.5), handler)
	if counts['\n'] != 1 || change {
		t.Errorf("enter = %d change = %v, want 1 false", counts['\n'], change)
	}
	if want := At(at(5)); next != want {
		t.Errorf("next wake = %v, want %v", next, want)
	}

	// The repeat threshold.
	change, next = rep.Tick(at(5), handler)
	if counts['\n'] != 2 || !change {
		t.Errorf("enter = %d change = %v, want 2 true", counts['\n'], change)
	}
	if want := At(at(6)); next != want {
		t.Errorf("next wake = %v, want %v", next, want)
	}

	// The handler disables repeat for 'f'; its press is delivered once
	// and never again.
	rep.Press(at(5), 'f')
	if counts['f'] != 0 {
		t.Errorf("f delivered before tick: %d", counts['f'])
	}

	// Polling late synthesizes the missed repeats.
	change, next = rep.Tick(at(8), handler)
	if counts['\n'] != 5 || counts['f'] != 1 || !change {
		t.Errorf("enter = %d f = %d change = %v, want 5 1 true", counts['\n'], counts['f'], change)
	}
	if want := At(at(9)); next != want {
		t.Errorf("next wake = %v, want %v", next, want)
	}

	rep.Press(at(9), ' ')
	change, next = rep.Tick(at(10), handler)
	if counts['\n'] != 7 || counts[' '] != 1 || counts['f'] != 1 || !change {
		t.Errorf("enter = %d space = %d f = %d change = %v, want 7 1 1 true",
			counts['\n'], counts[' '], counts['f'], change)
	}
	if want := At(at(11)); next != want {
		t.Errorf("next wake = %v, want %v", next, want)
	}

	change, next = rep.Tick(at(15), handler)
	if counts['\n'] != 12 || counts[' '] != 3 || counts['f'] != 1 || !change {
		t.Errorf("enter = %d space = %d f = %d change = %v, want 12 3 1 true",
			counts['\n'], counts[' '], counts['f'], change)
	}
	if want := At(at(16)); next != want {
		t.Errorf("next wake = %v, want %v", next, want)
	}

	// Space is released exactly on its next repeat deadline, so that
	// repeat never fires.
	rep.Release(at(16), ' ')
	change, next = rep.Tick(at(16), handler)
	if counts['\n'] != 13 || counts[' '] != 3 || !change {
		t.Errorf("enter = %d space = %d change = %v, want 13 3 true", counts['\n'], counts[' '], change)
	}
	if want := At(at(17)); next != want {
		t.Errorf("next wake = %v, want %v", next, want)
	}

	rep.Release(at(17), '\n')
	change, next = rep.Tick(at(17), handler)
	if counts['\n'] != 13 || change {
		t.Errorf("enter = %d change = %v, want 13 false", counts['\n'], change)
	}
	if next.IsSet() {
		t.Errorf("next wake = %v, want none", next)
	}
}

// Disabling repeat from the handler silences the key for good, while
// other keys keep repeating, and the key can be pressed afresh later.
func TestDisableSilencesKey(t *testing.T) {
	counts := make(map[rune]int)
	handler := func(key rune, repeat *Repeat) Changed {
		counts[key]++
		if key == 'f' {
			repeat.Disable()
		}
		return true
	}

	rep := New[rune, Changed](testTimeout, testInterval)
	rep.Press(at(0), 'f')
	rep.Press(at(0), 'j')

	rep.Tick(at(0), handler)
	if counts['f'] != 1 || counts['j'] != 1 {
		t.Fatalf("f = %d j = %d, want 1 1", counts['f'], counts['j'])
	}
	if got := rep.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}

	for i := 1; i <= 20; i++ {
		rep.Tick(at(float64(5+i)), handler)
	}
	if counts['f'] != 1 {
		t.Errorf("f deliveries after disable = %d, want 1", counts['f'])
	}
	if counts['j'] <= 1 {
		t.Errorf("j deliveries = %d, want ongoing repeats", counts['j'])
	}

	// A fresh press starts a new cycle for the silenced key.
	rep.Press(at(30), 'f')
	rep.Tick(at(30), handler)
	if counts['f'] != 2 {
		t.Errorf("f deliveries after re-press = %d, want 2", counts['f'])
	}
}

// Two keys disabled in one tick: only one is physically removed, the
// other stays tombstoned. Both must behave as absent afterward.
func TestTombstonesTreatedAsAbsent(t *testing.T) {
	deliveries := 0
	silenceAll := func(key rune, repeat *Repeat) Count {
		deliveries++
		repeat.Disable()
		return 1
	}

	rep := New[rune, Count](testTimeout, testInterval)
	rep.Press(at(0), 'a')
	rep.Press(at(0), 'b')

	got, next := rep.Tick(at(0), silenceAll)
	if got != 2 || deliveries != 2 {
		t.Fatalf("deliveries = %d, want 2", deliveries)
	}
	if next.IsSet() {
		t.Errorf("next wake = %v, want none", next)
	}
	if got := rep.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}

	// Releases for silenced keys are no-ops, whether the entry is
	// already gone or still tombstoned.
	rep.Release(at(1), 'a')
	rep.Release(at(1), 'b')

	got, next = rep.Tick(at(2), silenceAll)
	if got != 0 {
		t.Errorf("deliveries after release = %d, want 0", got)
	}
	if next.IsSet() {
		t.Errorf("next wake = %v, want none", next)
	}

	// Pressing again revives both keys, removed or tombstoned alike.
	rep.Press(at(3), 'a')
	rep.Press(at(3), 'b')
	if got := rep.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
	got, _ = rep.Tick(at(3), silenceAll)
	if got != 2 {
		t.Errorf("deliveries after re-press = %d, want 2", got)
	}
}

// Stale tombstones are reclaimed by later ticks even when no further
// press or release ever arrives for them.
func TestTombstoneReclamation(t *testing.T) {
	silenceAll := func(key rune, repeat *Repeat) Count {
		repeat.Disable()
		return 1
	}

	rep := New[rune, Count](testTimeout, testInterval)
	rep.Press(at(0), 'a')
	rep.Press(at(0), 'b')
	rep.Press(at(0), 'c')

	if got, _ := rep.Tick(at(0), silenceAll); got != 3 {
		t.Fatalf("deliveries = %d, want 3", got)
	}

	// One entry went with the tick that tombstoned it; each further
	// tick reclaims at most one more.
	rep.Tick(at(1), silenceAll)
	rep.Tick(at(2), silenceAll)
	if got := len(rep.keys); got != 0 {
		t.Errorf("tracked entries after reclamation ticks = %d, want 0", got)
	}
}

// The reported wake-up is the minimum across keys with a pending
// deadline; drained keys do not participate.
func TestNextWakeAcrossKeys(t *testing.T) {
	rep := New[rune, Changed](testTimeout, testInterval)

	rep.Press(at(0), 'a')
	rep.Press(at(2), 'b')
	rep.Press(at(3), 'c')
	rep.Release(at(3.5), 'c')

	// 'c' drains fully during this tick and must not contribute.
	_, next := rep.Tick(at(4), counter(make(map[rune]int)))
	if want := At(at(5)); next != want {
		t.Errorf("next wake = %v, want %v (earliest repeat deadline)", next, want)
	}
}

func TestClear(t *testing.T) {
	counts := make(map[rune]int)
	rep := New[rune, Changed](testTimeout, testInterval)

	rep.Press(at(0), 'a')
	rep.Press(at(1), 'b')
	rep.Clear()

	if got := rep.Len(); got != 0 {
		t.Errorf("Len() after Clear = %d, want 0", got)
	}
	change, next := rep.Tick(at(2), counter(counts))
	if change || next.IsSet() || len(counts) != 0 {
		t.Errorf("Tick after Clear = (%v, %v) with %d deliveries, want (false, none) and 0", change, next, len(counts))
	}

	// Keys pressed after a clear behave like fresh presses.
	rep.Press(at(3), 'a')
	_, next = rep.Tick(at(3), counter(counts))
	if counts['a'] != 1 {
		t.Errorf("deliveries = %d, want 1", counts['a'])
	}
	if want := At(at(8)); next != want {
		t.Errorf("next wake = %v, want %v", next, want)
	}
}

func TestReleaseOfReleasedPanics(t *testing.T) {
	rep := New[rune, Changed](testTimeout, testInterval)
	rep.Press(at(0), 'x')
	rep.Release(at(1), 'x')

	defer func() {
		if recover() == nil {
			t.Errorf("release of an already-released key did not panic")
		}
	}()
	rep.Release(at(2), 'x')
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		interval time.Duration
	}{
		{name: "zero interval", timeout: time.Second, interval: 0},
		{name: "negative interval", timeout: time.Second, interval: -time.Second},
		{name: "negative timeout", timeout: -time.Second, interval: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("New(%v, %v) did not panic", tt.timeout, tt.interval)
				}
			}()
			New[rune, Changed](tt.timeout, tt.interval)
		})
	}
}

func TestAccessors(t *testing.T) {
	rep := New[rune, Changed](testTimeout, testInterval)
	if got := rep.Timeout(); got != testTimeout {
		t.Errorf("Timeout() = %v, want %v", got, testTimeout)
	}
	if got := rep.Interval(); got != testInterval {
		t.Errorf("Interval() = %v, want %v", got, testInterval)
	}
}
