package usecase

import (
	"context"
	"time"

	"TrendPull/internal/domain/models"
	drepo "TrendPull/internal/domain/repository"
	applogger "TrendPull/pkg/logger"
)

// FeedCollector owns the feed lifecycle: it re-derives the subscription list
// from the symbol registry on every (re)connect, dispatches decoded events,
// and retries failures with a fixed delay, forever, until its context is
// cancelled. Nothing on this path may terminate the process.
type FeedCollector struct {
	stream         drepo.MarketStream
	registry       drepo.SymbolRegistry
	cache          drepo.PriceCache
	agg            *BarAggregator
	metrics        drepo.Metrics
	l              *applogger.Logger
	reconnectDelay time.Duration
	pollInterval   time.Duration
}

// NewFeedCollector creates a collector.
func NewFeedCollector(
	stream drepo.MarketStream,
	registry drepo.SymbolRegistry,
	cache drepo.PriceCache,
	agg *BarAggregator,
	metrics drepo.Metrics,
	l *applogger.Logger,
	reconnectDelay, pollInterval time.Duration,
) *FeedCollector {
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	return &FeedCollector{
		stream:         stream,
		registry:       registry,
		cache:          cache,
		agg:            agg,
		metrics:        metrics,
		l:              l,
		reconnectDelay: reconnectDelay,
		pollInterval:   pollInterval,
	}
}

// IsConnected reports feed connectivity.
func (c *FeedCollector) IsConnected() bool { return c.stream.IsConnected() }

// Run drives the reconnect loop until ctx is cancelled. Blocking; callers
// run it in a goroutine.
func (c *FeedCollector) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		symbols, err := c.registry.List(ctx)
		if err != nil {
			c.metrics.RecordError("registry")
			c.l.Error("symbol list failed", applogger.Error(err))
			if !c.sleep(ctx, c.reconnectDelay) {
				return
			}
			continue
		}
		if len(symbols) == 0 {
			// pause condition, not an error
			c.l.Info("no active symbols, waiting")
			if !c.sleep(ctx, c.pollInterval) {
				return
			}
			continue
		}

		if err := c.stream.Connect(ctx, symbols); err != nil {
			c.metrics.RecordError("connect")
			c.l.Error("feed connect failed", applogger.Error(err))
			if !c.sleep(ctx, c.reconnectDelay) {
				return
			}
			continue
		}
		c.metrics.RecordReconnect()

		c.consume(ctx)
		_ = c.stream.Close()

		if !c.sleep(ctx, c.reconnectDelay) {
			return
		}
	}
}

// consume dispatches events until the stream errors or ctx is cancelled.
func (c *FeedCollector) consume(ctx context.Context) {
	events, errs := c.stream.Read(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				return
			}
			if err != nil {
				c.metrics.RecordError("stream")
				c.l.Error("feed stream error", applogger.Error(err))
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev == nil {
				continue
			}
			c.dispatch(ctx, ev)
		}
	}
}

func (c *FeedCollector) dispatch(ctx context.Context, ev *models.FeedEvent) {
	switch ev.Kind {
	case models.FeedTrade:
		c.cache.Set(ev.Symbol, ev.Price)
		c.metrics.RecordLastPrice(ev.Symbol, ev.Price)
	case models.FeedKline:
		start := time.Now()
		c.agg.OnNativeBar(ctx, ev.Bar)
		c.metrics.RecordLatency("bar_ingest", time.Since(start).Seconds())
	}
}

// sleep waits d or until cancellation; returns false when cancelled.
func (c *FeedCollector) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
