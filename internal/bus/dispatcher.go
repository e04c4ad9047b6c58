package bus

import (
	"sync"
	"time"

	"github.com/yanun0323/logs"

	"main/internal/obs"
	"main/internal/schema"
)

// Handler consumes one decoded event.
type Handler func(schema.Event)

// Dispatcher routes decoded events to the callbacks registered for
// their topic. Registration is expected at startup but is safe at any
// time; dispatch never blocks on a missing handler.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[schema.Topic][]Handler
	metrics  *obs.Metrics
	seq      *obs.SeqGenerator
}

// NewDispatcher creates a dispatcher reporting into the given metrics.
func NewDispatcher(metrics *obs.Metrics) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[schema.Topic][]Handler),
		metrics:  metrics,
		seq:      obs.NewSeqGenerator(0),
	}
}

// RegisterCallback appends a handler for a topic. Handlers run in
// registration order on the dispatching goroutine.
func (d *Dispatcher) RegisterCallback(topic schema.Topic, h Handler) {
	if h == nil {
		return
	}
	d.mu.Lock()
	d.handlers[topic] = append(d.handlers[topic], h)
	d.mu.Unlock()
}

// Process decodes an inbound payload and dispatches it. A payload that
// fails to decode is logged with its raw bytes when available and
// counted, never propagated further.
func (d *Dispatcher) Process(p schema.Payload) error {
	seq := d.seq.Next()
	evt, err := schema.Decode(p)
	if err != nil {
		d.metrics.IncDecodeError()
		if raw, ok := p.(interface{ Raw() []byte }); ok {
			logs.Errorf("decode payload failed, seq: %d, err: %+v, raw: %s", seq, err, raw.Raw())
		} else {
			logs.Errorf("decode payload failed, seq: %d, err: %+v", seq, err)
		}
		return err
	}

	d.Publish(evt)
	return nil
}

// Publish dispatches an already-typed event to its topic's handlers.
// An event with no registered handler is counted and dropped.
func (d *Dispatcher) Publish(evt schema.Event) {
	topic := evt.EventTopic()

	d.mu.RLock()
	hs := d.handlers[topic]
	d.mu.RUnlock()

	if len(hs) == 0 {
		d.metrics.IncNoCallback()
		logs.Warnf("no callback for topic: %s", topic)
		return
	}

	start := time.Now()
	for _, h := range hs {
		h(evt)
	}
	d.metrics.ObserveDispatch(topic, time.Since(start))
}
