package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avelichka/lectern/internal/common"
	"github.com/avelichka/lectern/internal/dbx"
)

// SQLiteRepository implements Repository over a dbx.DBTX
// (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db        dbx.DBTX
	allowlist Allowlist
	now       func() time.Time
}

// NewSQLiteRepository returns a repository bound to the given DBTX and
// allow-list.
func NewSQLiteRepository(db dbx.DBTX, allowlist Allowlist) *SQLiteRepository {
	return &SQLiteRepository{db: db, allowlist: allowlist, now: time.Now}
}

// Put upserts by the composite primary key, so readers see either the old
// row or the new one, never a partial overwrite. Disallowed keys are a
// silent no-op.
func (r *SQLiteRepository) Put(ctx context.Context, class, id, variant string, payload []byte) error {
	if !r.allowlist.Allows(class, variant) {
		return nil
	}
	query := `INSERT INTO cached_content (resource_class, resource_id, variant, payload, cached_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(resource_class, resource_id, variant) DO UPDATE SET
			payload = excluded.payload,
			cached_at = excluded.cached_at
	`
	_, err := r.db.ExecContext(ctx, query, class, id, variant, payload, r.now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to upsert cached content: %w", err)
	}
	return nil
}

// Get is a pure lookup against the composite key.
func (r *SQLiteRepository) Get(ctx context.Context, class, id, variant string) ([]byte, error) {
	query := `SELECT payload FROM cached_content
		WHERE resource_class = ? AND resource_id = ? AND variant = ?`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, class, id, variant).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select cached content: %w", err)
	}
	return payload, nil
}

// PruneOlderThan removes entries cached before cutoff.
func (r *SQLiteRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cached_content WHERE cached_at < ?`, cutoff.UTC().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune cached content: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
