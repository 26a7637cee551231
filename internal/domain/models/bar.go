package models

import "time"

// PriceBar is one OHLC bar. Native bars come straight off the feed once the
// upstream flags them closed; synthetic bars are rolled up from natives and
// carry the roll-up window start as OpenTime. Both are immutable once stored.
type PriceBar struct {
	Symbol      string
	Granularity string
	OpenTime    time.Time // UTC, minute-aligned
	Open        float64
	High        float64
	Low         float64
	Close       float64
}

// BarEvent is the JSON shape published to Kafka for every persisted bar.
type BarEvent struct {
	Symbol      string  `json:"symbol"`
	Granularity string  `json:"granularity"`
	OpenTime    int64   `json:"open_time"` // unix seconds
	Open        float64 `json:"open"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Close       float64 `json:"close"`
}

// Event converts a bar to its wire representation.
func (b PriceBar) Event() BarEvent {
	return BarEvent{
		Symbol:      b.Symbol,
		Granularity: b.Granularity,
		OpenTime:    b.OpenTime.Unix(),
		Open:        b.Open,
		High:        b.High,
		Low:         b.Low,
		Close:       b.Close,
	}
}

// LivePrice is the most recent traded price for a symbol. Memory only,
// superseded on every tick, lost on restart.
type LivePrice struct {
	Symbol     string
	Price      float64
	ObservedAt time.Time
}

// FeedEventKind discriminates decoded upstream messages.
type FeedEventKind int

const (
	FeedTrade FeedEventKind = iota
	FeedKline
)

// FeedEvent is one decoded message off the market feed. For trades only
// Symbol and Price are set; for klines Bar carries the closed native bar.
type FeedEvent struct {
	Kind   FeedEventKind
	Symbol string
	Price  float64
	Bar    PriceBar
}
