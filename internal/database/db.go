// Package database opens the curation SQLite database.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

// Options configures NewDB.
type Options struct {
	DSN string `yaml:"dsn"`
	// Debug logs every query.
	Debug bool `yaml:"debug"`
	// BusyTimeout bounds how long a writer waits for the SQLite write lock.
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// NewDB opens the database and applies connection pragmas.
func NewDB(ctx context.Context, opts Options) (*bun.DB, error) {
	if opts.DSN == "" {
		return nil, fmt.Errorf("database dsn is required")
	}
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = 5 * time.Second
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.DSN, err)
	}
	// SQLite has a single writer, and pragmas are per connection.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if opts.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		fmt.Sprintf("PRAGMA busy_timeout = %d", opts.BusyTimeout.Milliseconds()),
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	return db, nil
}
