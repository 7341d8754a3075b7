// Package store opens and owns the client's local durable store: one
// SQLite database holding the content cache and the pending mutation
// queue. The store is constructed once per process and passed to
// components explicitly; there are no ambient handles.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avelichka/lectern/internal/client/cache"
	"github.com/avelichka/lectern/internal/client/queue"
	"github.com/avelichka/lectern/internal/client/store/migrations"
	"github.com/avelichka/lectern/internal/common"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Store bundles the repositories backed by the local SQLite database.
type Store struct {
	db    *sql.DB
	Cache cache.Repository
	Queue queue.Repository
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the local database at dsn, applies
// migrations and wires the repositories. A failure here means the app must
// degrade to online-only behavior: callers receive
// common.ErrStoreUnavailable and offline writes fail fast instead of
// being silently dropped.
func Open(ctx context.Context, dsn string, allowlist cache.Allowlist) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	return &Store{
		db:    db,
		Cache: cache.NewSQLiteRepository(db, allowlist),
		Queue: queue.NewSQLiteRepository(db),
	}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
