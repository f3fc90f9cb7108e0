// Package storage keeps a local append-only audit trail of order
// activity. The bot never reads it back; it exists for operators.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/glebarez/go-sqlite"

	"github.com/Operatorliquid/hyper-bot/internal/domain"
)

// Journal records order placements and cancels in SQLite.
type Journal struct {
	db *sql.DB
}

// NewJournal opens (or creates) the journal database with WAL mode.
func NewJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS order_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts INTEGER NOT NULL,
			event TEXT NOT NULL,
			coin TEXT NOT NULL,
			side TEXT,
			px REAL,
			sz REAL,
			status TEXT,
			oid TEXT
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("create order_events table: %w", err)
	}

	return &Journal{db: db}, nil
}

// RecordPlacement appends one placement attempt and its classification.
func (j *Journal) RecordPlacement(ctx context.Context, tsUnixMilli int64, coin string, side domain.Side, px, sz float64, status domain.OrderStatus, oid any) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO order_events (ts, event, coin, side, px, sz, status, oid) VALUES (?, 'place', ?, ?, ?, ?, ?, ?)",
		tsUnixMilli, coin, string(side), px, sz, status.String(), fmt.Sprint(oid),
	)
	if err != nil {
		return fmt.Errorf("record placement: %w", err)
	}
	return nil
}

// RecordCancel appends one cancel attempt and whether it succeeded.
func (j *Journal) RecordCancel(ctx context.Context, tsUnixMilli int64, coin string, oid any, ok bool) error {
	status := "ok"
	if !ok {
		status = "failed"
	}
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO order_events (ts, event, coin, status, oid) VALUES (?, 'cancel', ?, ?, ?)",
		tsUnixMilli, coin, status, fmt.Sprint(oid),
	)
	if err != nil {
		return fmt.Errorf("record cancel: %w", err)
	}
	return nil
}

// Count returns the number of journaled events, for tests and status.
func (j *Journal) Count(ctx context.Context) (int64, error) {
	var n int64
	err := j.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM order_events").Scan(&n)
	return n, err
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}
