package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avelichka/lectern/internal/common"
	"github.com/avelichka/lectern/internal/dbx"
)

// PostgresRepository implements Repository over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert applies last-write-wins: the incoming payload overwrites whatever
// is stored, with updated_at stamped from the database clock. The
// conflict guard on principal and class means a colliding id owned by
// someone else updates zero rows.
func (r *PostgresRepository) Upsert(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO records (id, principal, resource_class, payload, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (id)
		DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = now()
			WHERE records.principal = EXCLUDED.principal
			  AND records.resource_class = EXCLUDED.resource_class;
	`
	res, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Principal, string(rec.Class), []byte(rec.Payload))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return r.conflictError(ctx, rec)
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// conflictError inspects the stored row to report why the upsert matched
// nothing: the id is owned by another principal, or the same principal
// stored it under a different class.
func (r *PostgresRepository) conflictError(ctx context.Context, rec *Record) error {
	var principal, class string
	err := r.db.QueryRowContext(ctx,
		`SELECT principal, resource_class FROM records WHERE id = $1`, rec.ID).
		Scan(&principal, &class)
	if err != nil {
		return fmt.Errorf("conflict lookup error: %w", err)
	}
	if principal != rec.Principal {
		return common.ErrPrincipalMismatch
	}
	return fmt.Errorf("%w: %q stored as %q", common.ErrClassMismatch, string(rec.Class), class)
}

// Delete removes the record scoped to (id, principal). Zero rows affected
// is still success: the record may already be gone, and replayed deletes
// must be idempotent.
func (r *PostgresRepository) Delete(ctx context.Context, id, principal string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM records WHERE id = $1 AND principal = $2`, id, principal)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Record, error) {
	query := `SELECT id, principal, resource_class, payload, updated_at
		FROM records WHERE id = $1`

	var (
		rec   Record
		class string
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.Principal, &class, &rec.Payload, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select record: %w", err)
	}
	rec.Class = ResourceClass(class)
	return &rec, nil
}
