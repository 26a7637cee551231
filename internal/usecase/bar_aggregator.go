package usecase

import (
	"context"
	"sync"
	"time"

	"TrendPull/internal/domain/models"
	drepo "TrendPull/internal/domain/repository"
	applogger "TrendPull/pkg/logger"
	"TrendPull/pkg/util"
)

// BarAggregator persists closed native bars and rolls them up into one
// higher synthetic granularity.
//
// Roll-up buffers are keyed per symbol and hold the natives of the current
// synthetic window. A synthetic bar is emitted only when a native from the
// next window arrives; a window that never sees a successor is never flushed.
type BarAggregator struct {
	store         drepo.BarStore
	pub           drepo.BarPublisher // nil when publishing is disabled
	metrics       drepo.Metrics
	l             *applogger.Logger
	rollupMinutes int
	rollupGran    drepo.Granularity

	mu      sync.Mutex
	buffers map[string]*rollupBuffer
}

type rollupBuffer struct {
	windowStart time.Time
	bars        []models.PriceBar
}

// NewBarAggregator creates an aggregator rolling natives up into
// rollupMinutes-sized synthetic bars.
func NewBarAggregator(
	store drepo.BarStore,
	pub drepo.BarPublisher,
	metrics drepo.Metrics,
	l *applogger.Logger,
	rollupMinutes int,
) *BarAggregator {
	if rollupMinutes < 2 {
		rollupMinutes = 5
	}
	return &BarAggregator{
		store:         store,
		pub:           pub,
		metrics:       metrics,
		l:             l,
		rollupMinutes: rollupMinutes,
		rollupGran:    drepo.Gran5m,
		buffers:       make(map[string]*rollupBuffer),
	}
}

// OnNativeBar handles one closed native bar: persist it, then fold the
// symbol's roll-up buffer if the bar opens a new synthetic window.
// Store failures are logged and the buffer is retained for the next attempt;
// nothing here is fatal to the ingestion loop.
func (a *BarAggregator) OnNativeBar(ctx context.Context, bar models.PriceBar) {
	if err := a.store.Insert(ctx, bar); err != nil {
		a.metrics.RecordError("bar_store")
		a.l.Error("native bar store failed",
			applogger.String("symbol", bar.Symbol),
			applogger.Time("open_time", bar.OpenTime),
			applogger.Error(err),
		)
	} else {
		a.metrics.RecordBarStored(bar.Granularity, bar.Symbol)
		a.publish(ctx, bar)
	}

	a.rollup(ctx, bar)
}

func (a *BarAggregator) rollup(ctx context.Context, bar models.PriceBar) {
	window := util.WindowStart(bar.OpenTime, a.rollupMinutes)

	a.mu.Lock()
	buf, ok := a.buffers[bar.Symbol]
	if !ok {
		a.buffers[bar.Symbol] = &rollupBuffer{windowStart: window, bars: []models.PriceBar{bar}}
		a.mu.Unlock()
		return
	}

	if window.Equal(buf.windowStart) {
		buf.bars = append(buf.bars, bar)
		a.mu.Unlock()
		return
	}

	// previous window closed; fold it and start the new one
	folded := foldBars(bar.Symbol, string(a.rollupGran), buf.windowStart, buf.bars)
	buf.windowStart = window
	buf.bars = []models.PriceBar{bar}
	a.mu.Unlock()

	if err := a.store.Insert(ctx, folded); err != nil {
		a.metrics.RecordError("bar_store")
		a.l.Error("synthetic bar store failed",
			applogger.String("symbol", folded.Symbol),
			applogger.Time("window", folded.OpenTime),
			applogger.Error(err),
		)
		return
	}
	a.metrics.RecordBarStored(folded.Granularity, folded.Symbol)
	a.publish(ctx, folded)
}

func (a *BarAggregator) publish(ctx context.Context, bar models.PriceBar) {
	if a.pub == nil {
		return
	}
	if err := a.pub.Publish(ctx, bar.Event()); err != nil {
		a.metrics.RecordError("bar_publish")
		a.l.Warn("bar publish failed",
			applogger.String("symbol", bar.Symbol),
			applogger.Error(err),
		)
	}
}

// foldBars rolls an ordered slice of native bars into one synthetic bar:
// open of the first, close of the last, extreme high/low, window start as
// the timestamp.
func foldBars(symbol, granularity string, windowStart time.Time, bars []models.PriceBar) models.PriceBar {
	out := models.PriceBar{
		Symbol:      symbol,
		Granularity: granularity,
		OpenTime:    windowStart,
		Open:        bars[0].Open,
		High:        bars[0].High,
		Low:         bars[0].Low,
		Close:       bars[len(bars)-1].Close,
	}
	for _, b := range bars[1:] {
		if b.High > out.High {
			out.High = b.High
		}
		if b.Low < out.Low {
			out.Low = b.Low
		}
	}
	return out
}

// BufferedCount reports how many natives sit in the symbol's current window.
func (a *BarAggregator) BufferedCount(symbol string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if buf, ok := a.buffers[symbol]; ok {
		return len(buf.bars)
	}
	return 0
}
