package md

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/obs"
	"main/internal/position"
	"main/internal/schema"
)

func TestFeedRevaluesLedgerOnTrade(t *testing.T) {
	var events []schema.PositionUpdatedEvent
	ledger := position.NewLedger(func(evt schema.PositionUpdatedEvent) {
		events = append(events, evt)
	})
	ledger.Update("GGAL", 10, 100)
	events = events[:0]

	router := NewRouter(obs.NewMetrics())
	sub := router.Subscribe(schema.SubscriptionAggregated, "GGAL")
	feed := NewFeed(sub, "GGAL", schema.SubscriptionAggregated, ledger)

	feed.ApplySnapshot(&schema.MarketDataSnapshotEvent{
		Symbol: "GGAL",
		MDType: schema.SubscriptionAggregated,
		Entries: []schema.MDEntry{
			{Type: schema.MDEntryTrade, Px: 104, Size: 2, TrdType: intPtr(1)},
		},
	})

	require.Len(t, events, 1)
	assert.Equal(t, 40.0, events[0].OpenResult)

	book := feed.Book()
	assert.Equal(t, 104.0, book.LastPx)
}
