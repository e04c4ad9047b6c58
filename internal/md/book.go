package md

import (
	"main/internal/schema"
)

// Level is one resting price level of a book side.
type Level struct {
	Px     float64
	Size   float64
	Orders int
}

// Book is the per-symbol view rebuilt from full refresh snapshots.
// Volume accumulates across snapshots; everything else reflects the
// latest refresh.
type Book struct {
	Symbol string
	Mode   schema.SubscriptionType

	bids   [schema.MaxDepth]Level
	offers [schema.MaxDepth]Level

	LastPx          float64
	LastQty         float64
	TradePx         float64
	TradeQty        float64
	Volume          float64
	ClosePx         float64
	EffectiveVolume float64
	NominalVolume   float64

	// OnTrade observes every trade entry applied to the book.
	OnTrade func(px, qty float64)
}

// NewBook creates a book for one symbol and depth model.
func NewBook(symbol string, mode schema.SubscriptionType) *Book {
	return &Book{Symbol: symbol, Mode: mode}
}

// Bid returns the level at a 1-based depth slot.
func (b *Book) Bid(slot int) Level {
	if slot < 1 || slot > b.Mode.Depth() {
		return Level{}
	}
	return b.bids[slot-1]
}

// Offer returns the level at a 1-based depth slot.
func (b *Book) Offer(slot int) Level {
	if slot < 1 || slot > b.Mode.Depth() {
		return Level{}
	}
	return b.offers[slot-1]
}

// Apply rebuilds the book sides from one snapshot and records trade,
// close and volume entries.
func (b *Book) Apply(evt *schema.MarketDataSnapshotEvent) {
	if b.Mode == schema.SubscriptionDisaggregated {
		b.applyDisaggregated(evt)
	} else {
		b.applySlotted(evt)
	}
}

// applySlotted places each entry into its reported depth slot. Entries
// past the tracked depth are ignored.
func (b *Book) applySlotted(evt *schema.MarketDataSnapshotEvent) {
	depth := b.Mode.Depth()
	for _, entry := range evt.Entries {
		switch entry.Type {
		case schema.MDEntryBid:
			if slot := entry.Slot(); slot <= depth {
				b.bids[slot-1] = Level{Px: entry.Px, Size: entry.Size, Orders: 1}
			}
		case schema.MDEntryOffer:
			if slot := entry.Slot(); slot <= depth {
				b.offers[slot-1] = Level{Px: entry.Px, Size: entry.Size, Orders: 1}
			}
		default:
			b.applyCommon(entry)
		}
	}
}

// applyDisaggregated buckets consecutive same-price entries into one
// level per side, keeping the resting order count.
func (b *Book) applyDisaggregated(evt *schema.MarketDataSnapshotEvent) {
	var bids, offers [schema.MaxDepth]Level
	bidSlot, offerSlot := -1, -1

	for _, entry := range evt.Entries {
		switch entry.Type {
		case schema.MDEntryBid:
			bidSlot = bucket(&bids, bidSlot, entry)
		case schema.MDEntryOffer:
			offerSlot = bucket(&offers, offerSlot, entry)
		default:
			b.applyCommon(entry)
		}
	}

	if bidSlot >= 0 {
		b.bids = bids
	}
	if offerSlot >= 0 {
		b.offers = offers
	}
}

func bucket(side *[schema.MaxDepth]Level, slot int, entry schema.MDEntry) int {
	if slot >= 0 && slot < len(side) && side[slot].Px == entry.Px {
		side[slot].Size += entry.Size
		side[slot].Orders++
		return slot
	}
	slot++
	if slot < len(side) {
		side[slot] = Level{Px: entry.Px, Size: entry.Size, Orders: 1}
	}
	return slot
}

func (b *Book) applyCommon(entry schema.MDEntry) {
	switch entry.Type {
	case schema.MDEntryTrade:
		if entry.TrdType != nil {
			b.TradePx = entry.Px
			b.TradeQty = entry.Size
			b.Volume += entry.Size
		}
		b.LastPx = entry.Px
		b.LastQty = entry.Size
		if b.OnTrade != nil {
			b.OnTrade(entry.Px, entry.Size)
		}
	case schema.MDEntryClose:
		b.ClosePx = entry.Px
	case schema.MDEntryTradeVolume:
		b.EffectiveVolume = entry.Px
		b.NominalVolume = entry.Size
	}
}
