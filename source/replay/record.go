package replay

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/typematic/key"
	"github.com/dshills/typematic/source"
)

// Recorder is a pass-through source that captures everything flowing
// from the wrapped source into a Session. It can sit between any live
// source and the loop, so a run can be re-played later.
type Recorder struct {
	src source.Source[key.Code]
	ch  chan source.Event[key.Code]

	mu      sync.Mutex
	session Session
	start   time.Time
	started bool
}

// NewRecorder wraps src. The returned Recorder is itself a Source and
// must be consumed for events to flow.
func NewRecorder(src source.Source[key.Code]) *Recorder {
	r := &Recorder{
		src: src,
		ch:  make(chan source.Event[key.Code]),
		session: Session{
			ID: uuid.NewString(),
		},
	}
	go r.pump()
	return r
}

func (r *Recorder) pump() {
	defer close(r.ch)
	for ev := range r.src.Events() {
		r.record(ev)
		r.ch <- ev
	}
}

func (r *Recorder) record(ev source.Event[key.Code]) {
	// Sessions address keys by name, so codes without one are passed
	// through live but left out of the capture.
	name, ok := ev.Key.Name()
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		r.started = true
		r.start = ev.Time
		r.session.Recorded = ev.Time
	}
	r.session.Events = append(r.session.Events, TimedEvent{
		At:      Offset(ev.Time.Sub(r.start)),
		Key:     name,
		Pressed: ev.Pressed,
	})
}

// Events returns the pass-through event channel.
func (r *Recorder) Events() <-chan source.Event[key.Code] {
	return r.ch
}

// Close closes the wrapped source; the event channel ends once the
// remaining events have drained.
func (r *Recorder) Close() error {
	return r.src.Close()
}

// Session returns a snapshot of everything captured so far.
func (r *Recorder) Session() Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.session
	s.Events = make([]TimedEvent, len(r.session.Events))
	copy(s.Events, r.session.Events)
	return s
}
