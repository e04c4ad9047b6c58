package md

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/schema"
)

func intPtr(v int) *int { return &v }

func TestBookAggregatedSlots(t *testing.T) {
	book := NewBook("GGAL", schema.SubscriptionAggregated)

	book.Apply(&schema.MarketDataSnapshotEvent{
		Symbol: "GGAL",
		MDType: schema.SubscriptionAggregated,
		Entries: []schema.MDEntry{
			{Type: schema.MDEntryBid, Px: 100, Size: 50},
			{Type: schema.MDEntryBid, Px: 99, Size: 30, Position: 2},
			{Type: schema.MDEntryOffer, Px: 101, Size: 20, Position: 1},
			{Type: schema.MDEntryOffer, Px: 102, Size: 10, Position: 5},
		},
	})

	assert.Equal(t, Level{Px: 100, Size: 50, Orders: 1}, book.Bid(1))
	assert.Equal(t, Level{Px: 99, Size: 30, Orders: 1}, book.Bid(2))
	assert.Equal(t, Level{Px: 101, Size: 20, Orders: 1}, book.Offer(1))
	assert.Equal(t, Level{Px: 102, Size: 10, Orders: 1}, book.Offer(5))
}

func TestBookIgnoresEntriesPastDepth(t *testing.T) {
	book := NewBook("GGAL", schema.SubscriptionAggregated)

	book.Apply(&schema.MarketDataSnapshotEvent{
		Entries: []schema.MDEntry{
			{Type: schema.MDEntryBid, Px: 95, Size: 10, Position: 6},
		},
	})

	for slot := 1; slot <= schema.MaxDepth; slot++ {
		assert.Zero(t, book.Bid(slot).Px)
	}
}

func TestBookTopTracksSingleSlot(t *testing.T) {
	book := NewBook("GGAL", schema.SubscriptionTop)

	book.Apply(&schema.MarketDataSnapshotEvent{
		Entries: []schema.MDEntry{
			{Type: schema.MDEntryBid, Px: 100, Size: 50},
			{Type: schema.MDEntryBid, Px: 99, Size: 30, Position: 2},
		},
	})

	assert.Equal(t, 100.0, book.Bid(1).Px)
	assert.Zero(t, book.Bid(2).Px)
}

func TestBookDisaggregatedBucketsSamePrice(t *testing.T) {
	book := NewBook("GGAL", schema.SubscriptionDisaggregated)

	book.Apply(&schema.MarketDataSnapshotEvent{
		Entries: []schema.MDEntry{
			{Type: schema.MDEntryBid, Px: 100, Size: 10},
			{Type: schema.MDEntryBid, Px: 100, Size: 15},
			{Type: schema.MDEntryBid, Px: 99, Size: 5},
			{Type: schema.MDEntryOffer, Px: 101, Size: 7},
			{Type: schema.MDEntryOffer, Px: 101, Size: 3},
			{Type: schema.MDEntryOffer, Px: 102, Size: 9},
		},
	})

	require.Equal(t, Level{Px: 100, Size: 25, Orders: 2}, book.Bid(1))
	assert.Equal(t, Level{Px: 99, Size: 5, Orders: 1}, book.Bid(2))
	assert.Equal(t, Level{Px: 101, Size: 10, Orders: 2}, book.Offer(1))
	assert.Equal(t, Level{Px: 102, Size: 9, Orders: 1}, book.Offer(2))
}

func TestBookDisaggregatedRebuildsSides(t *testing.T) {
	book := NewBook("GGAL", schema.SubscriptionDisaggregated)

	book.Apply(&schema.MarketDataSnapshotEvent{
		Entries: []schema.MDEntry{
			{Type: schema.MDEntryBid, Px: 100, Size: 10},
			{Type: schema.MDEntryBid, Px: 99, Size: 5},
		},
	})
	book.Apply(&schema.MarketDataSnapshotEvent{
		Entries: []schema.MDEntry{
			{Type: schema.MDEntryBid, Px: 98, Size: 4},
		},
	})

	assert.Equal(t, Level{Px: 98, Size: 4, Orders: 1}, book.Bid(1))
	assert.Zero(t, book.Bid(2).Px)
}

func TestBookTradeEntries(t *testing.T) {
	book := NewBook("GGAL", schema.SubscriptionAggregated)

	var traded []float64
	book.OnTrade = func(px, _ float64) { traded = append(traded, px) }

	book.Apply(&schema.MarketDataSnapshotEvent{
		Entries: []schema.MDEntry{
			{Type: schema.MDEntryTrade, Px: 100, Size: 5, TrdType: intPtr(1)},
		},
	})
	book.Apply(&schema.MarketDataSnapshotEvent{
		Entries: []schema.MDEntry{
			{Type: schema.MDEntryTrade, Px: 101, Size: 3, TrdType: intPtr(1)},
		},
	})

	assert.Equal(t, 101.0, book.LastPx)
	assert.Equal(t, 3.0, book.LastQty)
	assert.Equal(t, 101.0, book.TradePx)
	assert.Equal(t, 8.0, book.Volume)
	assert.Equal(t, []float64{100, 101}, traded)
}

func TestBookTradeWithoutTypeSkipsVolume(t *testing.T) {
	book := NewBook("GGAL", schema.SubscriptionAggregated)

	book.Apply(&schema.MarketDataSnapshotEvent{
		Entries: []schema.MDEntry{
			{Type: schema.MDEntryTrade, Px: 100, Size: 5},
		},
	})

	assert.Equal(t, 100.0, book.LastPx)
	assert.Zero(t, book.TradePx)
	assert.Zero(t, book.Volume)
}

func TestBookCloseAndTradeVolume(t *testing.T) {
	book := NewBook("GGAL", schema.SubscriptionAggregated)

	book.Apply(&schema.MarketDataSnapshotEvent{
		Entries: []schema.MDEntry{
			{Type: schema.MDEntryClose, Px: 99.5},
			{Type: schema.MDEntryTradeVolume, Px: 123456, Size: 1000},
		},
	})

	assert.Equal(t, 99.5, book.ClosePx)
	assert.Equal(t, 123456.0, book.EffectiveVolume)
	assert.Equal(t, 1000.0, book.NominalVolume)
}

func TestBookVolumeCarriesAcrossSnapshots(t *testing.T) {
	book := NewBook("GGAL", schema.SubscriptionAggregated)

	book.Apply(&schema.MarketDataSnapshotEvent{
		Entries: []schema.MDEntry{
			{Type: schema.MDEntryTrade, Px: 100, Size: 5, TrdType: intPtr(1)},
		},
	})
	book.Apply(&schema.MarketDataSnapshotEvent{
		Entries: []schema.MDEntry{
			{Type: schema.MDEntryBid, Px: 100, Size: 10},
		},
	})

	assert.Equal(t, 5.0, book.Volume)
}
