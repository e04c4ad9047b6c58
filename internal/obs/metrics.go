package obs

import (
	"sync"
	"sync/atomic"
	"time"

	"main/internal/schema"
)

// Metrics collects lightweight counters and latency stats. All methods
// are safe on a nil receiver so instrumentation can be left unwired.
type Metrics struct {
	decodeErrors        uint64
	noCallback          uint64
	unknownOrders       uint64
	duplicateSuppressed uint64
	mdNoSubscription    uint64
	mdQueueDrops        uint64
	notifyDrops         uint64
	queueDrops          uint64
	queueClosed         uint64

	topicMu     sync.Mutex
	topicCounts map[schema.Topic]uint64

	dispatchLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	DecodeErrors        uint64
	NoCallback          uint64
	UnknownOrders       uint64
	DuplicateSuppressed uint64
	MDNoSubscription    uint64
	MDQueueDrops        uint64
	NotifyDrops         uint64
	QueueDrops          uint64
	QueueClosed         uint64
	TopicCounts         map[schema.Topic]uint64
	DispatchLatency     LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{topicCounts: make(map[schema.Topic]uint64)}
}

// ObserveDispatch counts one dispatched event and its handling latency.
func (m *Metrics) ObserveDispatch(topic schema.Topic, d time.Duration) {
	if m == nil {
		return
	}
	m.topicMu.Lock()
	m.topicCounts[topic]++
	m.topicMu.Unlock()
	m.dispatchLatency.Observe(d)
}

// IncDecodeError records an undecodable inbound payload.
func (m *Metrics) IncDecodeError() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.decodeErrors, 1)
}

// IncNoCallback records an event whose topic has no registered handler.
func (m *Metrics) IncNoCallback() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.noCallback, 1)
}

// IncUnknownOrder records a report that referenced no registered order.
func (m *Metrics) IncUnknownOrder() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.unknownOrders, 1)
}

// IncDuplicateSuppressed records an idempotently dropped report.
func (m *Metrics) IncDuplicateSuppressed() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.duplicateSuppressed, 1)
}

// IncMDNoSubscription records a snapshot with no matching subscriber.
func (m *Metrics) IncMDNoSubscription() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.mdNoSubscription, 1)
}

// IncMDQueueDrop records a stale snapshot displaced by a fresher one.
func (m *Metrics) IncMDQueueDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.mdQueueDrops, 1)
}

// IncNotifyDrop records a dropped order notification.
func (m *Metrics) IncNotifyDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.notifyDrops, 1)
}

// IncQueueDrop records a queue drop.
func (m *Metrics) IncQueueDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.queueDrops, 1)
}

// IncQueueClosed records a closed-queue publish attempt.
func (m *Metrics) IncQueueClosed() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.queueClosed, 1)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	topicCounts := make(map[schema.Topic]uint64)
	m.topicMu.Lock()
	for topic, n := range m.topicCounts {
		topicCounts[topic] = n
	}
	m.topicMu.Unlock()
	return Snapshot{
		DecodeErrors:        atomic.LoadUint64(&m.decodeErrors),
		NoCallback:          atomic.LoadUint64(&m.noCallback),
		UnknownOrders:       atomic.LoadUint64(&m.unknownOrders),
		DuplicateSuppressed: atomic.LoadUint64(&m.duplicateSuppressed),
		MDNoSubscription:    atomic.LoadUint64(&m.mdNoSubscription),
		MDQueueDrops:        atomic.LoadUint64(&m.mdQueueDrops),
		NotifyDrops:         atomic.LoadUint64(&m.notifyDrops),
		QueueDrops:          atomic.LoadUint64(&m.queueDrops),
		QueueClosed:         atomic.LoadUint64(&m.queueClosed),
		TopicCounts:         topicCounts,
		DispatchLatency:     m.dispatchLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
