package queue

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avelichka/lectern/internal/dbx"
	"github.com/avelichka/lectern/internal/syncmsg"
)

// SQLiteRepository implements Repository over a dbx.DBTX.
//
// The sequence id is the table's AUTOINCREMENT rowid: SQLite guarantees it
// is monotonic and never reused after deletes, which is exactly the
// ordering contract the queue needs.
type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

// NewSQLiteRepository returns a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Enqueue(ctx context.Context, class string, op syncmsg.Operation, payload []byte, principal string) (int64, error) {
	m := syncmsg.Mutation{Class: class, Op: op, Payload: payload, Principal: principal}
	if err := m.Validate(); err != nil {
		return 0, err
	}

	query := `INSERT INTO pending_mutations (resource_class, operation, payload, principal, created_at)
		VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, class, string(op), payload, principal, r.now().UTC().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue mutation: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id error: %w", err)
	}
	return seq, nil
}

func (r *SQLiteRepository) ListPending(ctx context.Context) ([]syncmsg.Mutation, error) {
	query := `SELECT seq, resource_class, operation, payload, principal, created_at
		FROM pending_mutations ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending mutations: %w", err)
	}
	defer rows.Close()

	var result []syncmsg.Mutation
	for rows.Next() {
		var (
			m         syncmsg.Mutation
			op        string
			createdAt int64
		)
		if err := rows.Scan(&m.Seq, &m.Class, &op, &m.Payload, &m.Principal, &createdAt); err != nil {
			return nil, err
		}
		m.Op = syncmsg.Operation(op)
		m.CreatedAt = time.UnixMilli(createdAt).UTC()
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Remove(ctx context.Context, seqs ...int64) error {
	if len(seqs) == 0 {
		return nil
	}

	del := func(ctx context.Context, db dbx.DBTX) error {
		for _, seq := range seqs {
			if _, err := db.ExecContext(ctx, `DELETE FROM pending_mutations WHERE seq = ?`, seq); err != nil {
				return fmt.Errorf("failed to remove mutation %d: %w", seq, err)
			}
		}
		return nil
	}

	// A handle that is already a transaction runs the deletes directly.
	if db, ok := r.db.(*sql.DB); ok {
		return dbx.WithTx(ctx, db, nil, del)
	}
	return del(ctx, r.db)
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM pending_mutations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pending mutations: %w", err)
	}
	return n, nil
}
