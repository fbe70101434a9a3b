package replay

import (
	"sync"
	"time"

	"github.com/dshills/typematic/key"
	"github.com/dshills/typematic/source"
)

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithDilation scales the session timeline: 1 replays in real time,
// 0.5 at double speed, 0 instantly. Negative values are treated as 0.
func WithDilation(f float64) PlayerOption {
	return func(p *Player) {
		if f < 0 {
			f = 0
		}
		p.dilation = f
	}
}

// Player replays a session, mapping its recorded timeline onto the
// wall clock from the moment of construction.
type Player struct {
	ch   chan source.Event[key.Code]
	done chan struct{}
	once sync.Once

	dilation float64
	after    func(time.Duration) <-chan time.Time
}

// resolved is a session event with its key name already looked up.
type resolved struct {
	at      time.Duration
	key     key.Code
	pressed bool
}

// NewPlayer validates the session and starts replaying it. Event
// timestamps and pacing both follow the dilated session timeline, so
// a sped-up replay still carries mutually consistent timestamps.
func NewPlayer(s Session, opts ...PlayerOption) (*Player, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	events := make([]resolved, len(s.Events))
	for i, ev := range s.Events {
		code, _ := key.FromName(ev.Key)
		events[i] = resolved{at: time.Duration(ev.At), key: code, pressed: ev.Pressed}
	}

	p := &Player{
		ch:       make(chan source.Event[key.Code]),
		done:     make(chan struct{}),
		dilation: 1,
		after:    time.After,
	}
	for _, opt := range opts {
		opt(p)
	}

	go p.play(events)
	return p, nil
}

func (p *Player) play(events []resolved) {
	defer close(p.ch)
	base := time.Now()

	for _, ev := range events {
		at := base.Add(p.scale(ev.at))
		if wait := time.Until(at); wait > 0 {
			select {
			case <-p.after(wait):
			case <-p.done:
				return
			}
		}

		out := source.Event[key.Code]{Time: at, Key: ev.key, Pressed: ev.pressed}
		select {
		case p.ch <- out:
		case <-p.done:
			return
		}
	}
}

func (p *Player) scale(d time.Duration) time.Duration {
	return time.Duration(float64(d) * p.dilation)
}

// Events returns the replayed event channel. It ends when the session
// has fully played or the Player is closed.
func (p *Player) Events() <-chan source.Event[key.Code] {
	return p.ch
}

// Close stops the replay.
func (p *Player) Close() error {
	p.once.Do(func() {
		close(p.done)
	})
	return nil
}
