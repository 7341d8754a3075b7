package records

import "context"

// Repository persists canonical records.
type Repository interface {
	// Upsert inserts or overwrites the record with the server's current
	// time as updated_at. If the record id exists but belongs to a
	// different principal (or a different class), nothing is written and
	// common.ErrPrincipalMismatch is returned: a principal cannot capture
	// another's record by id collision.
	Upsert(ctx context.Context, rec *Record) error

	// Delete removes the record scoped to (id, principal). Deleting a row
	// that does not exist is a success: replayed deletes are idempotent.
	Delete(ctx context.Context, id, principal string) error

	// GetByID fetches a record, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*Record, error)
}
