package usecase

import (
	"context"
	"fmt"
	"time"

	"TrendPull/internal/domain/models"
	drepo "TrendPull/internal/domain/repository"
)

// SignalCorrelator attaches signal events to bar windows.
//
// Selection is deterministic: the earliest order-class event wins the primary
// label; zone-class events represent evolving state, so the latest one in the
// window dominates. When both classes are present the order event is primary
// and the zone event is reported separately as a secondary tag.
type SignalCorrelator struct {
	signals drepo.SignalStore
}

// NewSignalCorrelator creates a correlator over a signal store.
func NewSignalCorrelator(signals drepo.SignalStore) *SignalCorrelator {
	return &SignalCorrelator{signals: signals}
}

// Correlate selects the signal(s) for the window
// [windowStart, windowStart + windowMinutes). An empty window yields a zero
// BarSignal, not an error.
func (sc *SignalCorrelator) Correlate(ctx context.Context, symbol string, windowStart time.Time, windowMinutes int) (models.BarSignal, error) {
	from := windowStart.UTC()
	to := from.Add(time.Duration(windowMinutes) * time.Minute)

	events, err := sc.signals.Range(ctx, symbol, from, to)
	if err != nil {
		return models.BarSignal{}, fmt.Errorf("signal range: %w", err)
	}

	return selectSignals(events), nil
}

// selectSignals applies the class precedence rule over the events of one
// window. Events are assumed ascending by EventTime.
func selectSignals(events []models.SignalEvent) models.BarSignal {
	var (
		firstOrder *models.SignalEvent
		lastZone   *models.SignalEvent
	)
	for i := range events {
		ev := &events[i]
		switch ev.Action.Class() {
		case models.ClassOrder:
			if firstOrder == nil || ev.EventTime.Before(firstOrder.EventTime) {
				firstOrder = ev
			}
		case models.ClassZone:
			if lastZone == nil || !ev.EventTime.Before(lastZone.EventTime) {
				lastZone = ev
			}
		}
	}

	switch {
	case firstOrder != nil && lastZone != nil:
		return models.BarSignal{Primary: firstOrder.Action, Secondary: lastZone.Action}
	case firstOrder != nil:
		return models.BarSignal{Primary: firstOrder.Action}
	case lastZone != nil:
		return models.BarSignal{Primary: lastZone.Action}
	default:
		return models.BarSignal{}
	}
}
