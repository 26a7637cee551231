package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"TrendPull/internal/domain/models"
	drepo "TrendPull/internal/domain/repository"
	"TrendPull/pkg/util"
)

// SignalIngest parses raw webhook alerts and appends classified signal
// events. Alert text is "<verb> <symbol>", e.g. "buy BTCUSDT" or
// "sellzone ETHUSDT".
type SignalIngest struct {
	signals drepo.SignalStore
	metrics drepo.Metrics
}

// NewSignalIngest creates the webhook ingestion use case.
func NewSignalIngest(signals drepo.SignalStore, metrics drepo.Metrics) *SignalIngest {
	return &SignalIngest{signals: signals, metrics: metrics}
}

// ErrIgnoredMessage marks webhook bodies that don't parse as a signal. The
// HTTP layer maps it to a 400 "ignored" response; it is not logged as a
// failure.
var ErrIgnoredMessage = fmt.Errorf("webhook message ignored")

// ParseMessage extracts a signal event from alert text. The event time is
// the current UTC minute.
func ParseMessage(message string, now time.Time) (models.SignalEvent, error) {
	parts := strings.Fields(strings.TrimSpace(message))
	if len(parts) != 2 {
		return models.SignalEvent{}, ErrIgnoredMessage
	}

	action, ok := models.ParseSignalAction(strings.ToLower(parts[0]))
	if !ok {
		return models.SignalEvent{}, ErrIgnoredMessage
	}

	symbol := strings.ToUpper(parts[1])
	if symbol == "" {
		return models.SignalEvent{}, ErrIgnoredMessage
	}

	return models.SignalEvent{
		Symbol:    symbol,
		Action:    action,
		Class:     action.Class(),
		EventTime: util.MinuteTruncate(now),
	}, nil
}

// Ingest parses and appends one webhook alert.
func (s *SignalIngest) Ingest(ctx context.Context, message string) (models.SignalEvent, error) {
	ev, err := ParseMessage(message, time.Now())
	if err != nil {
		return models.SignalEvent{}, err
	}

	if err := s.signals.Append(ctx, ev); err != nil {
		s.metrics.RecordError("signal_store")
		return models.SignalEvent{}, fmt.Errorf("append signal: %w", err)
	}
	s.metrics.RecordSignal(string(ev.Action))
	return ev, nil
}
