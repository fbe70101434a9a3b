package loop

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/typematic"
	"github.com/dshills/typematic/source"
)

// Option configures a Runner.
type Option func(*settings)

type settings struct {
	clock   Clock
	log     zerolog.Logger
	metrics *Metrics
}

// WithClock replaces the runner's clock.
func WithClock(c Clock) Option {
	return func(s *settings) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger attaches a logger to the runner.
func WithLogger(log zerolog.Logger) Option {
	return func(s *settings) {
		s.log = log
	}
}

// WithMetrics makes the runner record into m, so callers can watch a
// live runner or share one tracker across several.
func WithMetrics(m *Metrics) Option {
	return func(s *settings) {
		if m != nil {
			s.metrics = m
		}
	}
}

// Runner connects a source to a repeater and delivers repeats on time.
type Runner[K comparable, R typematic.Outcome[R]] struct {
	rep     *typematic.Repeater[K, R]
	src     source.Source[K]
	handler typematic.Handler[K, R]

	clock   Clock
	log     zerolog.Logger
	metrics *Metrics

	result R
}

// New builds a runner over rep and src. Handler runs on the runner's
// goroutine during Run and must not call back into rep.
func New[K comparable, R typematic.Outcome[R]](rep *typematic.Repeater[K, R], src source.Source[K], handler typematic.Handler[K, R], opts ...Option) *Runner[K, R] {
	s := settings{
		clock: System(),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	return &Runner[K, R]{
		rep:     rep,
		src:     src,
		handler: handler,
		clock:   s.clock,
		log:     s.log,
		metrics: s.metrics,
	}
}

// Metrics returns the runner's metrics tracker.
func (r *Runner[K, R]) Metrics() *Metrics {
	return r.metrics
}

// Result returns every handler outcome merged together. It is only
// meaningful after Run returns.
func (r *Runner[K, R]) Result() R {
	return r.result
}

// Run applies events and delivers repeats until the source ends or ctx
// is canceled. The runner owns the source: it is closed before Run
// returns. A natural end of the source flushes due repeats first; keys
// still held at that point are discarded with a warning. On
// cancellation held keys are discarded and ctx's error returned.
func (r *Runner[K, R]) Run(ctx context.Context) error {
	defer r.src.Close()

	timer := r.clock.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	events := r.src.Events()
	wake := r.tick(timer)

	for {
		select {
		case <-ctx.Done():
			r.rep.Clear()
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				r.tick(timer)
				if held := r.rep.Len(); held > 0 {
					r.log.Warn().Int("held", held).Msg("source ended with keys still held")
					r.rep.Clear()
				}
				return nil
			}
			if ev.Pressed {
				r.metrics.RecordPress()
				r.rep.Press(ev.Time, ev.Key)
			} else {
				r.metrics.RecordRelease()
				r.rep.Release(ev.Time, ev.Key)
			}
			r.log.Debug().Any("key", ev.Key).Bool("pressed", ev.Pressed).Time("at", ev.Time).Msg("event")
			wake = r.tick(timer)

		case <-wake:
			wake = r.tick(timer)
		}
	}
}

// tick runs one pass over the repeater and re-arms the timer for the
// next deadline. It returns the channel to sleep on, nil when no key
// needs a wake-up.
func (r *Runner[K, R]) tick(timer Timer) <-chan time.Time {
	now := r.clock.Now()
	out, next := r.rep.Tick(now, r.deliver)
	r.metrics.RecordTick()
	r.result = r.result.Merge(out)

	if !next.IsSet() {
		timer.Stop()
		return nil
	}
	d := next.Sub(now)
	r.log.Trace().Dur("sleep", d).Msg("armed")
	timer.Reset(d)
	return timer.C()
}

func (r *Runner[K, R]) deliver(k K, repeat *typematic.Repeat) R {
	start := time.Now()
	out := r.handler(k, repeat)
	r.metrics.RecordDelivery(time.Since(start))
	return out
}
