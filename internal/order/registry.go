package order

import (
	"sync"

	"main/pkg/exception"
)

// Registry indexes live and settled orders by client and venue id.
// Lookups and registration are safe from any goroutine. Order fields
// are guarded by a single coarse state lock shared by the execution
// report path and the command path; every field mutation and every
// status read of a registered order holds it.
type Registry struct {
	mu      sync.RWMutex
	stateMu sync.Mutex

	byClientID map[string]*Order
	byOrderID  map[string]*Order
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byClientID: make(map[string]*Order),
		byOrderID:  make(map[string]*Order),
	}
}

// Register adds a new order keyed by its client order id.
func (r *Registry) Register(o *Order) error {
	if o == nil || o.ClientOrderID == "" {
		return exception.ErrOrderInvalidSpec
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byClientID[o.ClientOrderID]; ok {
		return exception.ErrOrderDuplicate
	}
	r.byClientID[o.ClientOrderID] = o
	if o.OrderID != "" {
		r.byOrderID[o.OrderID] = o
	}
	return nil
}

// LockOrders takes the coarse order-state lock.
func (r *Registry) LockOrders() {
	r.stateMu.Lock()
}

// UnlockOrders releases the coarse order-state lock.
func (r *Registry) UnlockOrders() {
	r.stateMu.Unlock()
}

// Get returns the order for a client order id.
func (r *Registry) Get(clientOrderID string) (*Order, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.byClientID[clientOrderID]
	return o, ok
}

// GetByOrderID returns the order for a venue order id.
func (r *Registry) GetByOrderID(orderID string) (*Order, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.byOrderID[orderID]
	return o, ok
}

// BindOrderID indexes an order under its venue-assigned id.
func (r *Registry) BindOrderID(o *Order) {
	if o == nil || o.OrderID == "" {
		return
	}
	r.mu.Lock()
	r.byOrderID[o.OrderID] = o
	r.mu.Unlock()
}

// OpenOrders returns every order still working at the venue. The
// status filter runs under the state lock; the snapshot can go stale
// the moment it is returned.
func (r *Registry) OpenOrders() []*Order {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Order, 0, len(r.byClientID))
	for _, o := range r.byClientID {
		if o.Status.Open() {
			out = append(out, o)
		}
	}
	return out
}

// Len returns the number of registered orders.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byClientID)
}
