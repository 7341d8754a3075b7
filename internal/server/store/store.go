// Package store opens the server's canonical Postgres store and wires the
// repositories. The manager is constructed once per process and injected;
// there are no ambient handles.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avelichka/lectern/internal/server/records"
	"github.com/avelichka/lectern/internal/server/store/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Manager owns the database handle and the record repository.
type Manager struct {
	db      *sql.DB
	records records.Repository
}

func (m *Manager) Conn() *sql.DB {
	return m.db
}

func (m *Manager) Records() records.Repository {
	return m.records
}

func (m *Manager) runMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, m.db, ".")
}

// NewManager opens the database at dsn, runs migrations and wires the
// repositories.
func NewManager(ctx context.Context, dsn string) (*Manager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	m := &Manager{
		db:      db,
		records: records.NewPostgresRepository(db),
	}

	if err := m.runMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}

// Close releases the underlying database handle.
func (m *Manager) Close() error {
	return m.db.Close()
}
