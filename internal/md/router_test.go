package md

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/obs"
	"main/internal/schema"
)

func snapshot(symbol string, mdType schema.SubscriptionType, ts int64) *schema.MarketDataSnapshotEvent {
	return &schema.MarketDataSnapshotEvent{
		Topic:     schema.TopicMarketDataSnapshot,
		Symbol:    symbol,
		MDType:    mdType,
		Timestamp: ts,
	}
}

func TestRouterDispatchToSubscriber(t *testing.T) {
	router := NewRouter(obs.NewMetrics())
	sub := router.Subscribe(schema.SubscriptionAggregated, "GGAL")

	router.Dispatch(snapshot("GGAL", schema.SubscriptionAggregated, 1))

	select {
	case evt := <-sub.Events():
		assert.Equal(t, int64(1), evt.Timestamp)
	default:
		t.Fatal("expected a snapshot")
	}
}

func TestRouterNormalizesSymbol(t *testing.T) {
	router := NewRouter(obs.NewMetrics())
	sub := router.Subscribe(schema.SubscriptionAggregated, "MERV - XMEV - GGAL - 48hs")

	router.Dispatch(snapshot("MERV-XMEV-GGAL-48hs", schema.SubscriptionAggregated, 7))

	select {
	case evt := <-sub.Events():
		assert.Equal(t, int64(7), evt.Timestamp)
	default:
		t.Fatal("expected a snapshot")
	}
}

func TestRouterKeepsLatestOnOverflow(t *testing.T) {
	metrics := obs.NewMetrics()
	router := NewRouter(metrics)
	sub := router.Subscribe(schema.SubscriptionTop, "GGAL")

	router.Dispatch(snapshot("GGAL", schema.SubscriptionTop, 1))
	router.Dispatch(snapshot("GGAL", schema.SubscriptionTop, 2))
	router.Dispatch(snapshot("GGAL", schema.SubscriptionTop, 3))

	select {
	case evt := <-sub.Events():
		assert.Equal(t, int64(3), evt.Timestamp)
	default:
		t.Fatal("expected a snapshot")
	}
	assert.Equal(t, uint64(2), metrics.Snapshot().MDQueueDrops)
}

func TestRouterNoSubscriptionCounted(t *testing.T) {
	metrics := obs.NewMetrics()
	router := NewRouter(metrics)

	router.Dispatch(snapshot("GGAL", schema.SubscriptionAggregated, 1))

	assert.Equal(t, uint64(1), metrics.Snapshot().MDNoSubscription)
}

func TestRouterDepthModelsAreIsolated(t *testing.T) {
	metrics := obs.NewMetrics()
	router := NewRouter(metrics)
	sub := router.Subscribe(schema.SubscriptionTop, "GGAL")

	router.Dispatch(snapshot("GGAL", schema.SubscriptionAggregated, 1))

	select {
	case <-sub.Events():
		t.Fatal("aggregated snapshot must not reach a top subscription")
	default:
	}
	assert.Equal(t, uint64(1), metrics.Snapshot().MDNoSubscription)
}

func TestRouterUnsubscribe(t *testing.T) {
	router := NewRouter(obs.NewMetrics())
	sub := router.Subscribe(schema.SubscriptionAggregated, "GGAL")

	require.NoError(t, router.Unsubscribe(sub))
	assert.Error(t, router.Unsubscribe(sub))

	_, open := <-sub.Events()
	assert.False(t, open)
}
