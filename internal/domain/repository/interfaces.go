package repository

import (
	"context"
	"time"

	"TrendPull/internal/domain/models"
)

// MarketStream is one websocket subscription to the upstream feed. The symbol
// list is supplied per Connect so the caller can re-derive it on every
// reconnect cycle.
type MarketStream interface {
	Connect(ctx context.Context, symbols []string) error
	Read(ctx context.Context) (<-chan *models.FeedEvent, <-chan error)
	Close() error
	IsConnected() bool
}

// BarStore is the writer-of-record for OHLC bars.
type BarStore interface {
	Insert(ctx context.Context, bar models.PriceBar) error
	// LatestN returns up to n most recent bars in ascending OpenTime order.
	LatestN(ctx context.Context, symbol string, granularity string, n int) ([]models.PriceBar, error)
	Range(ctx context.Context, symbol string, granularity string, from, to time.Time) ([]models.PriceBar, error)
}

// SignalStore is the writer-of-record for signal events.
type SignalStore interface {
	Append(ctx context.Context, ev models.SignalEvent) error
	// Range returns events with from <= EventTime < to, ascending.
	Range(ctx context.Context, symbol string, from, to time.Time) ([]models.SignalEvent, error)
}

// SymbolRegistry holds the active subscription set. Mutations take effect on
// the next reconnect cycle, not instantaneously.
type SymbolRegistry interface {
	List(ctx context.Context) ([]string, error)
	Add(ctx context.Context, symbol string) error
	Remove(ctx context.Context, symbol string) error
}

// PriceCache holds the most recent traded price per symbol. Single writer
// (the feed dispatch path), any number of readers.
type PriceCache interface {
	Set(symbol string, price float64)
	Get(symbol string) (models.LivePrice, bool)
	Snapshot() map[string]models.LivePrice
}

// BarPublisher pushes persisted bars to downstream consumers. Implementations
// must treat publish failures as non-fatal.
type BarPublisher interface {
	Publish(ctx context.Context, ev models.BarEvent) error
	Close() error
}

type Metrics interface {
	RecordBarStored(granularity, symbol string)
	RecordSignal(action string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordReconnect()
}
