package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"TrendPull/internal/domain/models"
	drepo "TrendPull/internal/domain/repository"
	"TrendPull/internal/services/channel"
)

func seedBars(t *testing.T, store *fakeBarStore, sym string, n int, startClose float64) {
	t.Helper()
	base := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		c := startClose + float64(i)
		require.NoError(t, store.Insert(context.Background(), models.PriceBar{
			Symbol:      sym,
			Granularity: "1m",
			OpenTime:    base.Add(time.Duration(i) * time.Minute),
			Open:        c,
			High:        c + 1,
			Low:         c - 1,
			Close:       c,
		}))
	}
}

func newQuery(store *fakeBarStore, cache drepo.PriceCache) *MarketQuery {
	return NewMarketQuery(store, NewSignalCorrelator(&fakeSignalStore{}), cache, channel.NewEngine(0.5))
}

func TestClosedChannel(t *testing.T) {
	store := &fakeBarStore{}
	seedBars(t, store, "btcusdt", 60, 100)
	q := newQuery(store, newFakePriceCache())

	ch, err := q.ClosedChannel(context.Background(), "BTCUSDT", drepo.Gran1m, channel.Params{Length: 50, DevMult: 2})
	require.NoError(t, err)
	require.Equal(t, 50, ch.Length)
	require.False(t, ch.Live)
	require.Equal(t, models.DirectionUp, ch.Direction)
}

func TestClosedChannelInsufficientBars(t *testing.T) {
	store := &fakeBarStore{}
	seedBars(t, store, "btcusdt", 10, 100)
	q := newQuery(store, newFakePriceCache())

	_, err := q.ClosedChannel(context.Background(), "btcusdt", drepo.Gran1m, channel.Params{Length: 50, DevMult: 2})
	require.ErrorIs(t, err, channel.ErrInsufficientData)
}

func TestLiveChannelUsesTick(t *testing.T) {
	store := &fakeBarStore{}
	seedBars(t, store, "btcusdt", 49, 100)
	cache := newFakePriceCache()
	cache.Set("btcusdt", 150)
	q := newQuery(store, cache)

	ch, err := q.LiveChannel(context.Background(), "btcusdt", channel.Params{Length: 50, DevMult: 2})
	require.NoError(t, err)
	require.True(t, ch.Live)
	require.Equal(t, 50, ch.Length)
}

func TestLiveChannelNoTick(t *testing.T) {
	store := &fakeBarStore{}
	seedBars(t, store, "btcusdt", 100, 100)
	q := newQuery(store, newFakePriceCache())

	_, err := q.LiveChannel(context.Background(), "btcusdt", channel.Params{Length: 50, DevMult: 2})
	require.ErrorIs(t, err, channel.ErrInsufficientData)
}

func TestLiveChannelNoBarsWithTick(t *testing.T) {
	cache := newFakePriceCache()
	cache.Set("btcusdt", 65000.5)
	q := newQuery(&fakeBarStore{}, cache)

	// a live tick alone never produces a channel
	_, err := q.LiveChannel(context.Background(), "btcusdt", channel.Params{Length: 50, DevMult: 2})
	require.True(t, errors.Is(err, channel.ErrInsufficientData))
}

func TestRecentBarsNewestFirstWithSignals(t *testing.T) {
	store := &fakeBarStore{}
	seedBars(t, store, "btcusdt", 5, 100)
	signals := &fakeSignalStore{}
	base := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, signals.Append(context.Background(), models.SignalEvent{
		Symbol:    "BTCUSDT",
		Action:    models.ActionBuy,
		Class:     models.ClassOrder,
		EventTime: base.Add(2 * time.Minute),
	}))

	q := NewMarketQuery(store, NewSignalCorrelator(signals), newFakePriceCache(), channel.NewEngine(0.5))
	views, err := q.RecentBars(context.Background(), "btcusdt", drepo.Gran1m, 5)
	require.NoError(t, err)
	require.Len(t, views, 5)
	require.True(t, views[0].Bar.OpenTime.After(views[1].Bar.OpenTime), "newest first")

	var labeled int
	for _, v := range views {
		if v.Signal.Primary == models.ActionBuy {
			labeled++
			require.Equal(t, base.Add(2*time.Minute), v.Bar.OpenTime)
		}
	}
	require.Equal(t, 1, labeled, "signal attaches to exactly its bar window")
}
