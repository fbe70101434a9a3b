package loop

import (
	"sync/atomic"
	"time"
)

// Metrics tracks what a runner has processed. All methods are safe for
// concurrent use; a snapshot can be read while the runner is live.
type Metrics struct {
	pressesTotal    atomic.Uint64
	releasesTotal   atomic.Uint64
	ticksTotal      atomic.Uint64
	deliveriesTotal atomic.Uint64

	handlerTotalNS atomic.Int64
	peakHandlerNS  atomic.Int64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordPress records one press event taken from the source.
func (m *Metrics) RecordPress() {
	m.pressesTotal.Add(1)
}

// RecordRelease records one release event taken from the source.
func (m *Metrics) RecordRelease() {
	m.releasesTotal.Add(1)
}

// RecordTick records one tick pass over the repeater.
func (m *Metrics) RecordTick() {
	m.ticksTotal.Add(1)
}

// RecordDelivery records one handler invocation with its latency.
func (m *Metrics) RecordDelivery(latency time.Duration) {
	m.deliveriesTotal.Add(1)
	m.handlerTotalNS.Add(latency.Nanoseconds())

	// Update peak latency
	latencyNS := latency.Nanoseconds()
	for {
		current := m.peakHandlerNS.Load()
		if latencyNS <= current {
			break
		}
		if m.peakHandlerNS.CompareAndSwap(current, latencyNS) {
			break
		}
	}
}

// MetricsSnapshot holds a point-in-time view of metrics.
type MetricsSnapshot struct {
	PressesTotal    uint64
	ReleasesTotal   uint64
	TicksTotal      uint64
	DeliveriesTotal uint64

	AvgHandlerLatency  time.Duration
	PeakHandlerLatency time.Duration

	DeliveriesPerSecond float64

	Uptime time.Duration
}

// Snapshot returns a point-in-time view of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	deliveries := m.deliveriesTotal.Load()
	uptime := time.Since(m.startTime)

	snap := MetricsSnapshot{
		PressesTotal:       m.pressesTotal.Load(),
		ReleasesTotal:      m.releasesTotal.Load(),
		TicksTotal:         m.ticksTotal.Load(),
		DeliveriesTotal:    deliveries,
		PeakHandlerLatency: time.Duration(m.peakHandlerNS.Load()),
		Uptime:             uptime,
	}
	if deliveries > 0 {
		snap.AvgHandlerLatency = time.Duration(m.handlerTotalNS.Load() / int64(deliveries))
	}
	if uptime > 0 {
		snap.DeliveriesPerSecond = float64(deliveries) / uptime.Seconds()
	}
	return snap
}
