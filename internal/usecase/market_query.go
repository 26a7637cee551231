package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"TrendPull/internal/domain/models"
	drepo "TrendPull/internal/domain/repository"
	"TrendPull/internal/services/channel"
)

// MarketQuery is the pure query surface over stored bars, signals, and the
// live price cache. It never mutates stored data.
type MarketQuery struct {
	bars       drepo.BarStore
	correlator *SignalCorrelator
	cache      drepo.PriceCache
	engine     *channel.Engine
}

// NewMarketQuery creates the query use case.
func NewMarketQuery(
	bars drepo.BarStore,
	correlator *SignalCorrelator,
	cache drepo.PriceCache,
	engine *channel.Engine,
) *MarketQuery {
	return &MarketQuery{bars: bars, correlator: correlator, cache: cache, engine: engine}
}

// ClosedChannel computes the channel over the length most recent closed bars
// of the requested granularity.
func (q *MarketQuery) ClosedChannel(ctx context.Context, symbol string, gran drepo.Granularity, p channel.Params) (models.Channel, error) {
	symbol = strings.ToLower(symbol)

	bars, err := q.bars.LatestN(ctx, symbol, string(gran), p.Length)
	if err != nil {
		return models.Channel{}, fmt.Errorf("latest bars: %w", err)
	}
	if len(bars) < p.Length {
		return models.Channel{}, channel.ErrInsufficientData
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	return q.engine.Compute(symbol, string(gran), closes, p, false)
}

// LiveChannel computes the channel over the length-1 most recent closed
// native bars plus the live tick from the price cache. Recomputed on every
// call; never cached.
func (q *MarketQuery) LiveChannel(ctx context.Context, symbol string, p channel.Params) (models.Channel, error) {
	symbol = strings.ToLower(symbol)

	lp, ok := q.cache.Get(symbol)
	if !ok {
		return models.Channel{}, channel.ErrInsufficientData
	}

	bars, err := q.bars.LatestN(ctx, symbol, string(drepo.Gran1m), p.Length-1)
	if err != nil {
		return models.Channel{}, fmt.Errorf("latest bars: %w", err)
	}
	if len(bars) < p.Length-1 {
		return models.Channel{}, channel.ErrInsufficientData
	}

	closes := make([]float64, 0, p.Length)
	for _, b := range bars {
		closes = append(closes, b.Close)
	}
	closes = append(closes, lp.Price)

	return q.engine.Compute(symbol, string(drepo.Gran1m), closes, p, true)
}

// BarSignal reports the signal(s) correlated with one bar window.
func (q *MarketQuery) BarSignal(ctx context.Context, symbol string, windowStart time.Time, windowMinutes int) (models.BarSignal, error) {
	return q.correlator.Correlate(ctx, strings.ToUpper(symbol), windowStart, windowMinutes)
}

// BarView is one bar with its correlated signal labels attached.
type BarView struct {
	Bar    models.PriceBar
	Signal models.BarSignal
}

// RecentBars returns up to limit most recent bars, newest first, each with
// its correlated signals.
func (q *MarketQuery) RecentBars(ctx context.Context, symbol string, gran drepo.Granularity, limit int) ([]BarView, error) {
	bars, err := q.bars.LatestN(ctx, strings.ToLower(symbol), string(gran), limit)
	if err != nil {
		return nil, fmt.Errorf("latest bars: %w", err)
	}

	views := make([]BarView, 0, len(bars))
	// LatestN is ascending; render newest first
	for i := len(bars) - 1; i >= 0; i-- {
		b := bars[i]
		sig, err := q.correlator.Correlate(ctx, strings.ToUpper(symbol), b.OpenTime, gran.Minutes())
		if err != nil {
			return nil, fmt.Errorf("correlate %s: %w", b.OpenTime, err)
		}
		views = append(views, BarView{Bar: b, Signal: sig})
	}
	return views, nil
}
