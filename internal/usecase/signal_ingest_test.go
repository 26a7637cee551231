package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"TrendPull/internal/domain/models"
)

func TestParseMessage(t *testing.T) {
	now := time.Date(2024, 10, 10, 10, 7, 42, 123, time.UTC)

	tests := []struct {
		name       string
		message    string
		wantErr    bool
		wantAction models.SignalAction
		wantClass  models.SignalClass
		wantSymbol string
	}{
		{
			name:       "buy order",
			message:    "buy BTCUSDT",
			wantAction: models.ActionBuy,
			wantClass:  models.ClassOrder,
			wantSymbol: "BTCUSDT",
		},
		{
			name:       "sell order mixed case",
			message:    "SELL ethusdt",
			wantAction: models.ActionSell,
			wantClass:  models.ClassOrder,
			wantSymbol: "ETHUSDT",
		},
		{
			name:       "buy zone",
			message:    "buyzone BTCUSDT",
			wantAction: models.ActionBuyZone,
			wantClass:  models.ClassZone,
			wantSymbol: "BTCUSDT",
		},
		{
			name:       "sell zone with padding",
			message:    "  sellzone BTCUSDT  ",
			wantAction: models.ActionSellZone,
			wantClass:  models.ClassZone,
			wantSymbol: "BTCUSDT",
		},
		{name: "unknown verb", message: "hold BTCUSDT", wantErr: true},
		{name: "missing symbol", message: "buy", wantErr: true},
		{name: "too many parts", message: "buy BTCUSDT now", wantErr: true},
		{name: "empty", message: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseMessage(tt.message, now)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrIgnoredMessage)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantAction, ev.Action)
			require.Equal(t, tt.wantClass, ev.Class)
			require.Equal(t, tt.wantSymbol, ev.Symbol)
			require.Equal(t, time.Date(2024, 10, 10, 10, 7, 0, 0, time.UTC), ev.EventTime,
				"event time truncated to the minute")
		})
	}
}

func TestIngestAppends(t *testing.T) {
	store := &fakeSignalStore{}
	ing := NewSignalIngest(store, fakeMetrics{})

	ev, err := ing.Ingest(context.Background(), "buy BTCUSDT")
	require.NoError(t, err)
	require.Equal(t, models.ActionBuy, ev.Action)

	got, err := store.Range(context.Background(), "BTCUSDT", ev.EventTime, ev.EventTime.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 1)
}
