package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"TrendPull/internal/domain/models"
	applogger "TrendPull/pkg/logger"
)

func testLogger() *applogger.Logger {
	l, _ := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	return l
}

// fakeBarStore is an in-memory BarStore.
type fakeBarStore struct {
	mu      sync.Mutex
	bars    []models.PriceBar
	failing bool
}

func (s *fakeBarStore) Insert(_ context.Context, bar models.PriceBar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errors.New("store unavailable")
	}
	s.bars = append(s.bars, bar)
	return nil
}

func (s *fakeBarStore) LatestN(_ context.Context, symbol, granularity string, n int) ([]models.PriceBar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var match []models.PriceBar
	for _, b := range s.bars {
		if b.Symbol == symbol && b.Granularity == granularity {
			match = append(match, b)
		}
	}
	sort.Slice(match, func(i, j int) bool { return match[i].OpenTime.Before(match[j].OpenTime) })
	if len(match) > n {
		match = match[len(match)-n:]
	}
	return match, nil
}

func (s *fakeBarStore) Range(_ context.Context, symbol, granularity string, from, to time.Time) ([]models.PriceBar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var match []models.PriceBar
	for _, b := range s.bars {
		if b.Symbol == symbol && b.Granularity == granularity && !b.OpenTime.Before(from) && b.OpenTime.Before(to) {
			match = append(match, b)
		}
	}
	sort.Slice(match, func(i, j int) bool { return match[i].OpenTime.Before(match[j].OpenTime) })
	return match, nil
}

func (s *fakeBarStore) stored(granularity string) []models.PriceBar {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PriceBar
	for _, b := range s.bars {
		if b.Granularity == granularity {
			out = append(out, b)
		}
	}
	return out
}

// fakeSignalStore is an in-memory SignalStore.
type fakeSignalStore struct {
	mu     sync.Mutex
	events []models.SignalEvent
}

func (s *fakeSignalStore) Append(_ context.Context, ev models.SignalEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *fakeSignalStore) Range(_ context.Context, symbol string, from, to time.Time) ([]models.SignalEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.SignalEvent
	for _, ev := range s.events {
		if ev.Symbol == symbol && !ev.EventTime.Before(from) && ev.EventTime.Before(to) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventTime.Before(out[j].EventTime) })
	return out, nil
}

// fakePriceCache is a trivial PriceCache.
type fakePriceCache struct {
	mu     sync.Mutex
	prices map[string]models.LivePrice
}

func newFakePriceCache() *fakePriceCache {
	return &fakePriceCache{prices: make(map[string]models.LivePrice)}
}

func (c *fakePriceCache) Set(symbol string, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[strings.ToLower(symbol)] = models.LivePrice{Symbol: symbol, Price: price, ObservedAt: time.Now()}
}

func (c *fakePriceCache) Get(symbol string) (models.LivePrice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	lp, ok := c.prices[strings.ToLower(symbol)]
	return lp, ok
}

func (c *fakePriceCache) Snapshot() map[string]models.LivePrice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]models.LivePrice, len(c.prices))
	for k, v := range c.prices {
		out[k] = v
	}
	return out
}

// fakeMetrics records nothing.
type fakeMetrics struct{}

func (fakeMetrics) RecordBarStored(string, string)    {}
func (fakeMetrics) RecordSignal(string)               {}
func (fakeMetrics) RecordError(string)                {}
func (fakeMetrics) RecordLastPrice(string, float64)   {}
func (fakeMetrics) RecordLatency(string, float64)     {}
func (fakeMetrics) RecordReconnect()                  {}

// fakeRegistry serves a fixed symbol list.
type fakeRegistry struct {
	mu      sync.Mutex
	symbols []string
	calls   int
}

func (r *fakeRegistry) List(context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return append([]string(nil), r.symbols...), nil
}

func (r *fakeRegistry) Add(_ context.Context, s string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.symbols = append(r.symbols, strings.ToUpper(s))
	return nil
}

func (r *fakeRegistry) Remove(context.Context, string) error { return nil }

// fakeStream plays a scripted sequence of events then errors out.
type fakeStream struct {
	mu        sync.Mutex
	events    []*models.FeedEvent
	connected bool
	connects  int
}

func (s *fakeStream) Connect(context.Context, []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	s.connects++
	return nil
}

func (s *fakeStream) Read(ctx context.Context) (<-chan *models.FeedEvent, <-chan error) {
	events := make(chan *models.FeedEvent)
	errs := make(chan error)
	go func() {
		defer close(events)
		defer close(errs)
		for _, ev := range s.events {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
		select {
		case errs <- errors.New("stream closed"):
		case <-ctx.Done():
		}
	}()
	return events, errs
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}

func (s *fakeStream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}
