package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"TrendPull/internal/domain/models"
)

func TestCollectorDispatchesTradesAndBars(t *testing.T) {
	base := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)
	stream := &fakeStream{events: []*models.FeedEvent{
		{Kind: models.FeedTrade, Symbol: "btcusdt", Price: 65000.5},
		{Kind: models.FeedKline, Symbol: "btcusdt", Bar: nativeBar("btcusdt", base, 100, 110, 90, 105)},
	}}
	registry := &fakeRegistry{symbols: []string{"BTCUSDT"}}
	cache := newFakePriceCache()
	store := &fakeBarStore{}
	agg := NewBarAggregator(store, nil, fakeMetrics{}, testLogger(), 5)

	c := NewFeedCollector(stream, registry, cache, agg, fakeMetrics{}, testLogger(),
		10*time.Millisecond, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		lp, ok := cache.Get("btcusdt")
		return ok && lp.Price == 65000.5
	}, time.Second, 5*time.Millisecond, "price cache must reflect the trade tick")

	require.Eventually(t, func() bool {
		return len(store.stored("1m")) >= 1
	}, time.Second, 5*time.Millisecond, "closed kline must reach the bar store")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop on cancellation")
	}
}

func TestCollectorReconnectsWithFreshSymbolList(t *testing.T) {
	stream := &fakeStream{}
	registry := &fakeRegistry{symbols: []string{"BTCUSDT"}}
	cache := newFakePriceCache()
	agg := NewBarAggregator(&fakeBarStore{}, nil, fakeMetrics{}, testLogger(), 5)

	c := NewFeedCollector(stream, registry, cache, agg, fakeMetrics{}, testLogger(),
		5*time.Millisecond, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go c.Run(ctx)

	// each reconnect cycle re-reads the registry
	require.Eventually(t, func() bool {
		registry.mu.Lock()
		defer registry.mu.Unlock()
		return registry.calls >= 3
	}, time.Second, 5*time.Millisecond)

	stream.mu.Lock()
	connects := stream.connects
	stream.mu.Unlock()
	require.GreaterOrEqual(t, connects, 2, "collector must keep reconnecting after stream errors")

	cancel()
}

func TestCollectorWaitsWhenSymbolSetEmpty(t *testing.T) {
	stream := &fakeStream{}
	registry := &fakeRegistry{} // empty
	cache := newFakePriceCache()
	agg := NewBarAggregator(&fakeBarStore{}, nil, fakeMetrics{}, testLogger(), 5)

	c := NewFeedCollector(stream, registry, cache, agg, fakeMetrics{}, testLogger(),
		5*time.Millisecond, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go c.Run(ctx)

	require.Eventually(t, func() bool {
		registry.mu.Lock()
		defer registry.mu.Unlock()
		return registry.calls >= 2
	}, time.Second, 5*time.Millisecond, "collector keeps polling the registry")

	stream.mu.Lock()
	connects := stream.connects
	stream.mu.Unlock()
	require.Zero(t, connects, "no connection attempts with an empty symbol set")

	cancel()
}
