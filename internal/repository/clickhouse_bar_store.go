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

// CHBarStore implements BarStore backed by ClickHouse.
type CHBarStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewCHBarStore creates the bar store over an existing connection pool.
func NewCHBarStore(db *sql.DB, table string, l *applogger.Logger) *CHBarStore {
	return &CHBarStore{db: db, table: table, l: l}
}

func (s *CHBarStore) Insert(ctx context.Context, bar models.PriceBar) error {
	q := fmt.Sprintf(
		"INSERT INTO %s (symbol, granularity, open_time, open, high, low, close) VALUES (?, ?, ?, ?, ?, ?, ?)",
		s.table,
	)
	_, err := s.db.ExecContext(ctx, q,
		bar.Symbol,
		bar.Granularity,
		bar.OpenTime,
		bar.Open,
		bar.High,
		bar.Low,
		bar.Close,
	)
	if err != nil {
		return fmt.Errorf("insert bar: %w", err)
	}
	return nil
}

func (s *CHBarStore) LatestN(ctx context.Context, symbol, granularity string, n int) ([]models.PriceBar, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT symbol, granularity, open_time, open, high, low, close
        FROM %s
        WHERE symbol = ? AND granularity = ?
        ORDER BY open_time DESC
        LIMIT ?
    `, s.table)

	rows, err := s.db.QueryContext(ctx, q, symbol, granularity, n)
	if err != nil {
		s.l.Error("bar latest_n query error",
			applogger.String("symbol", symbol),
			applogger.String("granularity", granularity),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("latest bars: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.PriceBar, 0, n)
	for rows.Next() {
		var b models.PriceBar
		if err := rows.Scan(&b.Symbol, &b.Granularity, &b.OpenTime, &b.Open, &b.High, &b.Low, &b.Close); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		tmp = append(tmp, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	// query is newest-first; callers want ascending
	out := make([]models.PriceBar, len(tmp))
	for i, b := range tmp {
		out[len(tmp)-1-i] = b
	}

	s.l.Debug("bar latest_n ok",
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func (s *CHBarStore) Range(ctx context.Context, symbol, granularity string, from, to time.Time) ([]models.PriceBar, error) {
	q := fmt.Sprintf(`
        SELECT symbol, granularity, open_time, open, high, low, close
        FROM %s
        WHERE symbol = ? AND granularity = ? AND open_time >= ? AND open_time < ?
        ORDER BY open_time ASC
    `, s.table)

	rows, err := s.db.QueryContext(ctx, q, symbol, granularity, from, to)
	if err != nil {
		s.l.Error("bar range query error",
			applogger.String("symbol", symbol),
			applogger.String("granularity", granularity),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("bar range: %w", err)
	}
	defer rows.Close()

	out := make([]models.PriceBar, 0, 256)
	for rows.Next() {
		var b models.PriceBar
		if err := rows.Scan(&b.Symbol, &b.Granularity, &b.OpenTime, &b.Open, &b.High, &b.Low, &b.Close); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

var _ domrepo.BarStore = (*CHBarStore)(nil)
