package md

import (
	"context"
	"sync"

	"main/internal/position"
	"main/internal/schema"
)

// Feed consumes one subscription's snapshots into a book and revalues
// the position ledger on every traded price.
type Feed struct {
	sub    *Subscription
	ledger *position.Ledger

	mu   sync.Mutex
	book *Book
}

// NewFeed builds a feed over an open subscription. ledger may be nil
// for consumers that only want the book.
func NewFeed(sub *Subscription, symbol string, mode schema.SubscriptionType, ledger *position.Ledger) *Feed {
	f := &Feed{
		sub:    sub,
		ledger: ledger,
		book:   NewBook(symbol, mode),
	}
	f.book.OnTrade = func(px, _ float64) {
		if f.ledger != nil {
			f.ledger.UpdateOnMarketData(symbol, px)
		}
	}
	return f
}

// Run applies snapshots until the context ends or the subscription
// closes.
func (f *Feed) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-f.sub.Events():
			if !ok {
				return
			}
			f.ApplySnapshot(evt)
		}
	}
}

// ApplySnapshot folds one snapshot into the book.
func (f *Feed) ApplySnapshot(evt *schema.MarketDataSnapshotEvent) {
	f.mu.Lock()
	f.book.Apply(evt)
	f.mu.Unlock()
}

// Book returns a copy of the current book state.
func (f *Feed) Book() Book {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.book
}
