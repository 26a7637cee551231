package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"TrendPull/internal/domain/models"
	drepo "TrendPull/internal/domain/repository"
	applogger "TrendPull/pkg/logger"

	"github.com/gorilla/websocket"
)

// Client implements a MarketStream over Binance futures combined streams.
// One socket carries both the @trade and @kline_1m streams for every symbol
// in the subscription set; the set is fixed per connection, so callers
// re-derive it and call Connect again on every reconnect cycle.
type Client struct {
	baseURL      string
	pingInterval time.Duration
	l            *applogger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// New creates a new Binance MarketStream.
func New(baseURL string, pingInterval time.Duration, l *applogger.Logger) drepo.MarketStream {
	return &Client{baseURL: baseURL, pingInterval: pingInterval, l: l}
}

// StreamURL builds the combined-stream subscription URL for a symbol set.
func StreamURL(baseURL string, symbols []string) string {
	streams := make([]string, 0, len(symbols)*2)
	for _, s := range symbols {
		ls := strings.ToLower(s)
		streams = append(streams, ls+"@trade", ls+"@kline_1m")
	}
	return baseURL + "/stream?streams=" + strings.Join(streams, "/")
}

// Connect dials the combined stream for the given symbols.
func (c *Client) Connect(ctx context.Context, symbols []string) error {
	if len(symbols) == 0 {
		return fmt.Errorf("binance connect: empty symbol set")
	}

	u := StreamURL(c.baseURL, symbols)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("binance connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	c.l.Info("feed connected", applogger.Int("symbols", len(symbols)))
	return nil
}

// envelope is the combined-stream wrapper: {"stream": "...", "data": {...}}.
type envelope struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

type tradeMsg struct {
	Event  string `json:"e"`
	Symbol string `json:"s"`
	Price  string `json:"p"`
}

type klineMsg struct {
	Event  string `json:"e"`
	Symbol string `json:"s"`
	Kline  struct {
		OpenTime int64  `json:"t"` // ms
		Open     string `json:"o"`
		High     string `json:"h"`
		Low      string `json:"l"`
		Close    string `json:"c"`
		Closed   bool   `json:"x"`
	} `json:"k"`
}

// Read streams decoded feed events. Malformed frames are logged and skipped;
// only socket-level failures surface on the error channel, after which the
// channels close and the caller is expected to reconnect.
func (c *Client) Read(ctx context.Context) (<-chan *models.FeedEvent, <-chan error) {
	events := make(chan *models.FeedEvent, 1024)
	errs := make(chan error, 1)

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.mu.Lock()
				if c.conn != nil && c.connected {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
				c.mu.Unlock()
			}
		}
	}()

	// read loop
	go func() {
		defer close(events)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			if conn == nil {
				errs <- fmt.Errorf("binance conn nil")
				return
			}
			_, b, err := conn.ReadMessage()
			if err != nil {
				errs <- fmt.Errorf("binance read: %w", err)
				return
			}

			ev, ok := c.decode(b)
			if !ok {
				continue
			}
			select {
			case events <- ev:
			default:
				// drop on backpressure
			}
		}
	}()

	return events, errs
}

// decode parses one frame into a feed event. Returns ok=false for frames
// that are malformed, non-trade/kline, or open (not yet closed) klines.
func (c *Client) decode(b []byte) (*models.FeedEvent, bool) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil || len(env.Data) == 0 {
		c.l.Warn("feed frame skipped", applogger.Error(err))
		return nil, false
	}

	switch {
	case strings.HasSuffix(env.Stream, "@trade"):
		var m tradeMsg
		if err := json.Unmarshal(env.Data, &m); err != nil {
			c.l.Warn("trade decode failed", applogger.Error(err))
			return nil, false
		}
		price, err := strconv.ParseFloat(m.Price, 64)
		if err != nil {
			c.l.Warn("trade price parse failed", applogger.String("price", m.Price))
			return nil, false
		}
		return &models.FeedEvent{
			Kind:   models.FeedTrade,
			Symbol: strings.ToLower(m.Symbol),
			Price:  price,
		}, true

	case strings.Contains(env.Stream, "@kline"):
		var m klineMsg
		if err := json.Unmarshal(env.Data, &m); err != nil {
			c.l.Warn("kline decode failed", applogger.Error(err))
			return nil, false
		}
		if !m.Kline.Closed {
			// in-progress bars exist only inside the feed
			return nil, false
		}
		bar, err := klineBar(strings.ToLower(m.Symbol), m.Kline.OpenTime,
			m.Kline.Open, m.Kline.High, m.Kline.Low, m.Kline.Close)
		if err != nil {
			c.l.Warn("kline parse failed", applogger.Error(err))
			return nil, false
		}
		return &models.FeedEvent{
			Kind:   models.FeedKline,
			Symbol: bar.Symbol,
			Bar:    bar,
		}, true

	default:
		return nil, false
	}
}

func klineBar(symbol string, openMs int64, o, h, l, cl string) (models.PriceBar, error) {
	parse := func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

	open, err := parse(o)
	if err != nil {
		return models.PriceBar{}, fmt.Errorf("open %q: %w", o, err)
	}
	high, err := parse(h)
	if err != nil {
		return models.PriceBar{}, fmt.Errorf("high %q: %w", h, err)
	}
	low, err := parse(l)
	if err != nil {
		return models.PriceBar{}, fmt.Errorf("low %q: %w", l, err)
	}
	cls, err := parse(cl)
	if err != nil {
		return models.PriceBar{}, fmt.Errorf("close %q: %w", cl, err)
	}

	return models.PriceBar{
		Symbol:      symbol,
		Granularity: string(drepo.Gran1m),
		OpenTime:    time.UnixMilli(openMs).UTC(),
		Open:        open,
		High:        high,
		Low:         low,
		Close:       cls,
	}, nil
}

// Close closes the socket.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}
