package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"TrendPull/internal/domain/models"
	domrepo "TrendPull/internal/domain/repository"
	applogger "TrendPull/pkg/logger"
)

// CHSignalStore implements SignalStore backed by ClickHouse. Append-only;
// events are never mutated.
type CHSignalStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewCHSignalStore creates the signal store over an existing connection pool.
func NewCHSignalStore(db *sql.DB, table string, l *applogger.Logger) *CHSignalStore {
	return &CHSignalStore{db: db, table: table, l: l}
}

func (s *CHSignalStore) Append(ctx context.Context, ev models.SignalEvent) error {
	q := fmt.Sprintf(
		"INSERT INTO %s (symbol, action, class, event_time) VALUES (?, ?, ?, ?)",
		s.table,
	)
	_, err := s.db.ExecContext(ctx, q, ev.Symbol, string(ev.Action), string(ev.Class), ev.EventTime)
	if err != nil {
		return fmt.Errorf("append signal: %w", err)
	}
	return nil
}

func (s *CHSignalStore) Range(ctx context.Context, symbol string, from, to time.Time) ([]models.SignalEvent, error) {
	q := fmt.Sprintf(`
        SELECT symbol, action, class, event_time
        FROM %s
        WHERE symbol = ? AND event_time >= ? AND event_time < ?
        ORDER BY event_time ASC
    `, s.table)

	rows, err := s.db.QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		s.l.Error("signal range query error",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("signal range: %w", err)
	}
	defer rows.Close()

	out := make([]models.SignalEvent, 0, 16)
	for rows.Next() {
		var (
			ev     models.SignalEvent
			action string
			class  string
		)
		if err := rows.Scan(&ev.Symbol, &action, &class, &ev.EventTime); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		ev.Action = models.SignalAction(action)
		ev.Class = models.SignalClass(class)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

var _ domrepo.SignalStore = (*CHSignalStore)(nil)
