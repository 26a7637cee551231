package binance

import (
	"testing"
	"time"

	"TrendPull/internal/domain/models"
	applogger "TrendPull/pkg/logger"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func TestStreamURL(t *testing.T) {
	got := StreamURL("wss://fstream.binance.com", []string{"BTCUSDT", "ethusdt"})
	want := "wss://fstream.binance.com/stream?streams=btcusdt@trade/btcusdt@kline_1m/ethusdt@trade/ethusdt@kline_1m"
	if got != want {
		t.Fatalf("url = %s, want %s", got, want)
	}
}

func TestDecodeTrade(t *testing.T) {
	c := &Client{l: testLogger(t)}
	frame := []byte(`{"stream":"btcusdt@trade","data":{"e":"trade","s":"BTCUSDT","p":"65000.5"}}`)

	ev, ok := c.decode(frame)
	if !ok {
		t.Fatalf("expected decode ok")
	}
	if ev.Kind != models.FeedTrade || ev.Symbol != "btcusdt" || ev.Price != 65000.5 {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestDecodeMalformedFramesSkipped(t *testing.T) {
	c := &Client{l: testLogger(t)}
	frames := [][]byte{
		[]byte(`not json at all`),
		[]byte(`{"stream":"btcusdt@trade"}`),
		[]byte(`{"stream":"btcusdt@trade","data":{"e":"trade","s":"BTCUSDT","p":"garbage"}}`),
	}
	for i, f := range frames {
		if _, ok := c.decode(f); ok {
			t.Fatalf("frame %d: expected skip", i)
		}
	}

	// a valid trade after malformed frames still decodes
	ev, ok := c.decode([]byte(`{"stream":"btcusdt@trade","data":{"e":"trade","s":"BTCUSDT","p":"65000.5"}}`))
	if !ok || ev.Price != 65000.5 {
		t.Fatalf("valid trade after malformed frames not decoded: %+v", ev)
	}
}

func TestDecodeKlineClosedOnly(t *testing.T) {
	c := &Client{l: testLogger(t)}
	openTime := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)

	open := []byte(`{"stream":"btcusdt@kline_1m","data":{"e":"kline","s":"BTCUSDT","k":{"t":1728554400000,"o":"100","h":"110","l":"90","c":"105","x":false}}}`)
	if _, ok := c.decode(open); ok {
		t.Fatalf("open kline must be discarded")
	}

	closed := []byte(`{"stream":"btcusdt@kline_1m","data":{"e":"kline","s":"BTCUSDT","k":{"t":1728554400000,"o":"100","h":"110","l":"90","c":"105","x":true}}}`)
	ev, ok := c.decode(closed)
	if !ok {
		t.Fatalf("closed kline must decode")
	}
	if ev.Kind != models.FeedKline {
		t.Fatalf("expected kline event")
	}
	bar := ev.Bar
	if !bar.OpenTime.Equal(openTime) {
		t.Fatalf("open time = %v, want %v", bar.OpenTime, openTime)
	}
	if bar.Open != 100 || bar.High != 110 || bar.Low != 90 || bar.Close != 105 {
		t.Fatalf("unexpected bar %+v", bar)
	}
	if bar.Granularity != "1m" {
		t.Fatalf("granularity = %s, want 1m", bar.Granularity)
	}
}
