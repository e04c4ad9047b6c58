package md

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/yanun0323/logs"

	"main/internal/obs"
	"main/internal/schema"
	"main/pkg/exception"
)

// Subscription is one consumer's keep-latest snapshot queue. The queue
// holds a single snapshot; a fresher one displaces a stale unread one.
type Subscription struct {
	ID     string
	key    string
	events chan *schema.MarketDataSnapshotEvent
}

// Events returns the snapshot channel. It is closed on unsubscribe.
func (s *Subscription) Events() <-chan *schema.MarketDataSnapshotEvent {
	return s.events
}

// Router fans inbound snapshots out to subscriptions keyed by the
// subscription type and normalized symbol.
type Router struct {
	mu      sync.Mutex
	byKey   map[string][]*Subscription
	byID    map[string]*Subscription
	nextID  uint64
	metrics *obs.Metrics
}

// NewRouter creates an empty router.
func NewRouter(metrics *obs.Metrics) *Router {
	return &Router{
		byKey:   make(map[string][]*Subscription),
		byID:    make(map[string]*Subscription),
		metrics: metrics,
	}
}

// Subscribe opens a keep-latest queue for one symbol and depth model.
func (r *Router) Subscribe(mdType schema.SubscriptionType, symbol string) *Subscription {
	sub := &Subscription{
		key:    subscriptionKey(mdType, symbol),
		events: make(chan *schema.MarketDataSnapshotEvent, 1),
	}
	sub.ID = "MD-" + strconv.FormatUint(atomic.AddUint64(&r.nextID, 1), 10)

	r.mu.Lock()
	r.byKey[sub.key] = append(r.byKey[sub.key], sub)
	r.byID[sub.ID] = sub
	r.mu.Unlock()
	return sub
}

// Unsubscribe removes the subscription and closes its channel.
func (r *Router) Unsubscribe(sub *Subscription) error {
	if sub == nil {
		return exception.ErrUnknownSubscription
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[sub.ID]; !ok {
		return exception.ErrUnknownSubscription
	}
	delete(r.byID, sub.ID)

	subs := r.byKey[sub.key]
	for i, s := range subs {
		if s == sub {
			r.byKey[sub.key] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(r.byKey[sub.key]) == 0 {
		delete(r.byKey, sub.key)
	}
	close(sub.events)
	return nil
}

// Dispatch routes a snapshot to every matching subscription. A
// snapshot with no subscriber is counted and dropped.
func (r *Router) Dispatch(evt *schema.MarketDataSnapshotEvent) {
	key := subscriptionKey(evt.MDType, evt.Symbol)

	r.mu.Lock()
	subs := append([]*Subscription(nil), r.byKey[key]...)
	r.mu.Unlock()

	if len(subs) == 0 {
		r.metrics.IncMDNoSubscription()
		logs.Debugf("no subscription for market data, key: %s", key)
		return
	}

	for _, sub := range subs {
		r.push(sub, evt)
	}
}

// HandleEvent adapts the router to a dispatcher callback.
func (r *Router) HandleEvent(evt schema.Event) {
	snapshot, ok := evt.(*schema.MarketDataSnapshotEvent)
	if !ok {
		return
	}
	r.Dispatch(snapshot)
}

// push delivers a snapshot, displacing an unread stale one.
func (r *Router) push(sub *Subscription, evt *schema.MarketDataSnapshotEvent) {
	select {
	case sub.events <- evt:
		return
	default:
	}

	select {
	case <-sub.events:
		r.metrics.IncMDQueueDrop()
	default:
	}

	select {
	case sub.events <- evt:
	default:
		r.metrics.IncMDQueueDrop()
	}
}

// subscriptionKey joins the depth model with the symbol stripped of
// anything outside letters and digits.
func subscriptionKey(mdType schema.SubscriptionType, symbol string) string {
	return string(mdType) + "-" + normalizeSymbol(symbol)
}

func normalizeSymbol(symbol string) string {
	var b strings.Builder
	b.Grow(len(symbol))
	for _, r := range symbol {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
