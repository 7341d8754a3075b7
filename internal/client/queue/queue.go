// Package queue is the durable, FIFO-ordered store of mutations recorded
// while offline. Replay order is the correctness anchor of the whole
// engine: last-write-wins on the server is only deterministic because the
// queue hands entries back exactly as they were enqueued.
package queue

import (
	"context"

	"github.com/avelichka/lectern/internal/syncmsg"
)

// Repository persists pending mutations.
//
// Entries are identified by a locally-assigned, monotonically increasing
// sequence id. Removing one entry never reorders or renumbers the rest.
type Repository interface {
	// Enqueue appends a mutation and returns its sequence id. The row is
	// durable before Enqueue returns: a crash or reload must not lose a
	// pending write.
	Enqueue(ctx context.Context, class string, op syncmsg.Operation, payload []byte, principal string) (int64, error)

	// ListPending returns all queued mutations oldest-first. The order
	// reflects true creation order, including across process restarts.
	ListPending(ctx context.Context) ([]syncmsg.Mutation, error)

	// Remove deletes the entries with the given sequence ids, once the
	// server has confirmed them. The ids disappear as one unit; removing
	// an unknown id is a no-op.
	Remove(ctx context.Context, seqs ...int64) error

	// Count returns the number of queued mutations, for
	// "N changes pending sync" surfacing.
	Count(ctx context.Context) (int, error)
}
