package position

import (
	"sync"

	"main/internal/schema"
)

// Position is the running state for one symbol. Price is the weighted
// average entry price of the open size; CloseResult accumulates
// realized profit over the position's lifetime.
type Position struct {
	Symbol      string
	Size        float64
	Price       float64
	CloseResult float64

	lastPx float64
}

// OpenResult is the unrealized profit of the open size against the
// last observed trade price.
func (p *Position) OpenResult() float64 {
	if p.Size == 0 || p.lastPx == 0 {
		return 0
	}
	return (p.lastPx - p.Price) * p.Size
}

// Ledger tracks positions per symbol and publishes settled states.
type Ledger struct {
	mu        sync.Mutex
	positions map[string]*Position
	notify    func(schema.PositionUpdatedEvent)
}

// NewLedger creates an empty ledger. The notify sink receives one
// event per settled update and may be nil.
func NewLedger(notify func(schema.PositionUpdatedEvent)) *Ledger {
	return &Ledger{
		positions: make(map[string]*Position),
		notify:    notify,
	}
}

// Update applies one signed fill to the symbol's position and returns
// the settled size and average price plus the signed opened and closed
// portions of the trade, so the caller can split commission and PnL
// proportionally.
//
// A trade extending the position re-averages the entry price. A trade
// shrinking it realizes profit on the closed portion at the average
// entry price. A trade crossing through zero closes the whole old size
// and opens the remainder at the trade price.
func (l *Ledger) Update(symbol string, size, price float64) (newSize, avgPrice, opened, closed float64) {
	if size == 0 {
		l.mu.Lock()
		if p, ok := l.positions[symbol]; ok {
			newSize, avgPrice = p.Size, p.Price
		}
		l.mu.Unlock()
		return newSize, avgPrice, 0, 0
	}

	l.mu.Lock()
	p := l.position(symbol)

	oldSize := p.Size
	oldPrice := p.Price
	newSize = oldSize + size

	switch {
	case oldSize == 0:
		opened, closed = size, 0
		p.Price = price
	case newSize == 0:
		opened, closed = 0, size
	case oldSize > 0 && size > 0, oldSize < 0 && size < 0:
		opened, closed = size, 0
		p.Price = (oldSize*oldPrice + size*price) / newSize
	case oldSize > 0 == (newSize > 0):
		// shrank without crossing zero
		opened, closed = 0, size
	default:
		// crossed zero
		opened, closed = newSize, -oldSize
		p.Price = price
	}

	if closed != 0 {
		closedQty := closed
		if closedQty < 0 {
			closedQty = -closedQty
		}
		if oldSize < 0 {
			closedQty = -closedQty
		}
		p.CloseResult += (price - oldPrice) * closedQty
	}

	p.Size = newSize
	if p.Size == 0 {
		p.Price = 0
	}
	avgPrice = p.Price

	evt := l.snapshotLocked(p)
	l.mu.Unlock()

	l.publish(evt)
	return newSize, avgPrice, opened, closed
}

// UpdateOnMarketData revalues the symbol's position against a traded
// price. A repeated price or a flat position publishes nothing.
func (l *Ledger) UpdateOnMarketData(symbol string, price float64) {
	l.mu.Lock()
	p, ok := l.positions[symbol]
	if !ok || p.Size == 0 || price == p.lastPx {
		l.mu.Unlock()
		return
	}
	p.lastPx = price

	evt := l.snapshotLocked(p)
	l.mu.Unlock()

	l.publish(evt)
}

// Snapshot returns a copy of the symbol's position.
func (l *Ledger) Snapshot(symbol string) (Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// Symbols returns every symbol with a tracked position.
func (l *Ledger) Symbols() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.positions))
	for symbol := range l.positions {
		out = append(out, symbol)
	}
	return out
}

func (l *Ledger) position(symbol string) *Position {
	p, ok := l.positions[symbol]
	if !ok {
		p = &Position{Symbol: symbol}
		l.positions[symbol] = p
	}
	return p
}

func (l *Ledger) snapshotLocked(p *Position) schema.PositionUpdatedEvent {
	return schema.PositionUpdatedEvent{
		Topic:       schema.TopicPositionUpdated,
		Symbol:      p.Symbol,
		Size:        p.Size,
		Price:       p.Price,
		OpenResult:  p.OpenResult(),
		CloseResult: p.CloseResult,
	}
}

func (l *Ledger) publish(evt schema.PositionUpdatedEvent) {
	if l.notify == nil {
		return
	}
	l.notify(evt)
}
