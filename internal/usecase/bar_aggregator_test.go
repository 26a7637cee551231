package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"TrendPull/internal/domain/models"
)

func nativeBar(sym string, t time.Time, o, h, l, c float64) models.PriceBar {
	return models.PriceBar{
		Symbol:      sym,
		Granularity: "1m",
		OpenTime:    t,
		Open:        o,
		High:        h,
		Low:         l,
		Close:       c,
	}
}

func TestRollupEmitsOnWindowClose(t *testing.T) {
	ctx := context.Background()
	store := &fakeBarStore{}
	agg := NewBarAggregator(store, nil, fakeMetrics{}, testLogger(), 5)

	base := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)
	// five natives fill the 10:00 window
	for i := 0; i < 5; i++ {
		agg.OnNativeBar(ctx, nativeBar("btcusdt", base.Add(time.Duration(i)*time.Minute),
			100+float64(i), 110+float64(i), 90-float64(i), 105+float64(i)))
	}
	require.Empty(t, store.stored("5m"), "window must not flush before a successor arrives")

	// the 10:05 bar closes the window
	agg.OnNativeBar(ctx, nativeBar("btcusdt", base.Add(5*time.Minute), 200, 210, 190, 205))

	synth := store.stored("5m")
	require.Len(t, synth, 1)
	s := synth[0]
	require.Equal(t, base, s.OpenTime)
	require.Equal(t, 100.0, s.Open, "open of first constituent")
	require.Equal(t, 114.0, s.High, "max of highs")
	require.Equal(t, 86.0, s.Low, "min of lows")
	require.Equal(t, 109.0, s.Close, "close of last constituent")

	require.Equal(t, 1, agg.BufferedCount("btcusdt"), "buffer holds only the 10:05 bar")
	require.Len(t, store.stored("1m"), 6, "all natives persisted")
}

func TestRollupInvariants(t *testing.T) {
	ctx := context.Background()
	store := &fakeBarStore{}
	agg := NewBarAggregator(store, nil, fakeMetrics{}, testLogger(), 5)

	base := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)
	bars := []models.PriceBar{
		nativeBar("ethusdt", base, 50, 55, 48, 52),
		nativeBar("ethusdt", base.Add(1*time.Minute), 52, 60, 51, 58),
		nativeBar("ethusdt", base.Add(2*time.Minute), 58, 59, 40, 45),
	}
	for _, b := range bars {
		agg.OnNativeBar(ctx, b)
	}
	agg.OnNativeBar(ctx, nativeBar("ethusdt", base.Add(5*time.Minute), 45, 46, 44, 45))

	synth := store.stored("5m")
	require.Len(t, synth, 1)
	s := synth[0]
	require.GreaterOrEqual(t, s.High, s.Open)
	require.GreaterOrEqual(t, s.High, s.Close)
	require.LessOrEqual(t, s.Low, s.Open)
	require.LessOrEqual(t, s.Low, s.Close)
	require.Equal(t, 60.0, s.High)
	require.Equal(t, 40.0, s.Low)
}

func TestRollupPerSymbolBuffers(t *testing.T) {
	ctx := context.Background()
	store := &fakeBarStore{}
	agg := NewBarAggregator(store, nil, fakeMetrics{}, testLogger(), 5)

	base := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)
	agg.OnNativeBar(ctx, nativeBar("btcusdt", base, 1, 2, 0.5, 1.5))
	agg.OnNativeBar(ctx, nativeBar("ethusdt", base, 10, 20, 5, 15))
	agg.OnNativeBar(ctx, nativeBar("btcusdt", base.Add(5*time.Minute), 2, 3, 1, 2.5))

	require.Len(t, store.stored("5m"), 1, "only btcusdt window closed")
	require.Equal(t, "btcusdt", store.stored("5m")[0].Symbol)
	require.Equal(t, 1, agg.BufferedCount("ethusdt"))
}

func TestStoreFailureRetainsBuffer(t *testing.T) {
	ctx := context.Background()
	store := &fakeBarStore{failing: true}
	agg := NewBarAggregator(store, nil, fakeMetrics{}, testLogger(), 5)

	base := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)
	agg.OnNativeBar(ctx, nativeBar("btcusdt", base, 100, 110, 90, 105))

	// write failed but the roll-up buffer still tracks the bar
	require.Equal(t, 1, agg.BufferedCount("btcusdt"))
	require.Empty(t, store.stored("1m"))
}
