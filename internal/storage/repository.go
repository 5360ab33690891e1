// Package storage is the SQLite record store. It owns persistence only;
// all aggregation lives in the report engine, which consumes the snapshots
// returned here.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"trackmyfin/internal/core"
)

// ErrNotFound is returned when a row does not exist or does not belong to
// the requesting user.
var ErrNotFound = errors.New("not found")

const timeLayout = time.RFC3339

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseStoredTime surfaces a corrupt timestamp as a data-integrity fault
// naming the record instead of silently skipping it.
func parseStoredTime(entity string, id int64, s string) (time.Time, error) {
	ts, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, &core.InvalidRecordError{Entity: entity, ID: id, Reason: "unparseable timestamp " + s}
	}
	return ts, nil
}

// parseStoredAmount surfaces a corrupt amount as a data-integrity fault.
func parseStoredAmount(entity string, id int64, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &core.InvalidRecordError{Entity: entity, ID: id, Reason: "unparseable amount " + s}
	}
	return d, nil
}
