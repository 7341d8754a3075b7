package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/avelichka/lectern/internal/common"
	"github.com/avelichka/lectern/internal/logging"
	"github.com/avelichka/lectern/internal/syncmsg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------- test fakes --------

type fakeQueue struct {
	pending []syncmsg.Mutation
	removed []int64

	listErr   error
	removeErr error
}

func (f *fakeQueue) Enqueue(ctx context.Context, class string, op syncmsg.Operation, payload []byte, principal string) (int64, error) {
	seq := int64(len(f.pending) + 1)
	f.pending = append(f.pending, syncmsg.Mutation{Seq: seq, Class: class, Op: op, Payload: payload, Principal: principal})
	return seq, nil
}

func (f *fakeQueue) ListPending(ctx context.Context) ([]syncmsg.Mutation, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]syncmsg.Mutation, len(f.pending))
	copy(out, f.pending)
	return out, nil
}

func (f *fakeQueue) Remove(ctx context.Context, seqs ...int64) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	for _, seq := range seqs {
		f.removed = append(f.removed, seq)
		for i, m := range f.pending {
			if m.Seq == seq {
				f.pending = append(f.pending[:i], f.pending[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (f *fakeQueue) Count(ctx context.Context) (int, error) {
	return len(f.pending), nil
}

type fakeCache struct {
	pruned   int
	pruneErr error
}

func (f *fakeCache) Put(ctx context.Context, class, id, variant string, payload []byte) error {
	return nil
}

func (f *fakeCache) Get(ctx context.Context, class, id, variant string) ([]byte, error) {
	return nil, common.ErrNotFound
}

func (f *fakeCache) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if f.pruneErr != nil {
		return 0, f.pruneErr
	}
	f.pruned++
	return 1, nil
}

type fakeSubmitter struct {
	calls   int
	batches [][]syncmsg.Mutation
	respond func(call int, batch []syncmsg.Mutation) (*syncmsg.BatchResponse, error)
}

func (f *fakeSubmitter) Submit(ctx context.Context, batch []syncmsg.Mutation) (*syncmsg.BatchResponse, error) {
	f.calls++
	f.batches = append(f.batches, batch)
	return f.respond(f.calls, batch)
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func allOK(batch []syncmsg.Mutation) *syncmsg.BatchResponse {
	resp := &syncmsg.BatchResponse{OK: true, Processed: len(batch)}
	for _, m := range batch {
		resp.Results = append(resp.Results, syncmsg.RecordResult{Seq: m.Seq, OK: true})
	}
	return resp
}

func queueWith(n int) *fakeQueue {
	q := &fakeQueue{}
	for i := 0; i < n; i++ {
		_, _ = q.Enqueue(context.Background(), "note", syncmsg.OpInsert, json.RawMessage(`{"id":"x"}`), "alice")
	}
	return q
}

func fastOpts() Options {
	return Options{MaxRetries: 2, RetryBase: time.Millisecond}
}

// -------- tests --------

func TestSync_EmptyQueueIsZeroReport(t *testing.T) {
	sub := &fakeSubmitter{respond: func(int, []syncmsg.Mutation) (*syncmsg.BatchResponse, error) {
		t.Fatal("submit must not be called for an empty queue")
		return nil, nil
	}}
	s := NewSyncer(&fakeQueue{}, &fakeCache{}, sub, discardLogger(), fastOpts())

	report, err := s.Sync(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Processed)
	assert.Zero(t, report.Failed)
	assert.Zero(t, sub.calls)
}

func TestSync_RemovesOnlyConfirmedEntries(t *testing.T) {
	q := queueWith(5)
	sub := &fakeSubmitter{respond: func(_ int, batch []syncmsg.Mutation) (*syncmsg.BatchResponse, error) {
		resp := &syncmsg.BatchResponse{OK: true}
		for _, m := range batch {
			ok := m.Seq != 3
			res := syncmsg.RecordResult{Seq: m.Seq, OK: ok}
			if !ok {
				res.Error = "invalid payload"
				resp.Failed++
			} else {
				resp.Processed++
			}
			resp.Results = append(resp.Results, res)
		}
		return resp, nil
	}}
	s := NewSyncer(q, &fakeCache{}, sub, discardLogger(), fastOpts())

	report, err := s.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, report.Processed)
	assert.Equal(t, 1, report.Failed)
	assert.ElementsMatch(t, []int64{1, 2, 4, 5}, q.removed)

	// The rejected entry stays queued for a later pass.
	left, err := q.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, int64(3), left[0].Seq)
}

func TestSync_SubmitsBatchInEnqueueOrder(t *testing.T) {
	q := queueWith(3)
	sub := &fakeSubmitter{respond: func(_ int, batch []syncmsg.Mutation) (*syncmsg.BatchResponse, error) {
		return allOK(batch), nil
	}}
	s := NewSyncer(q, &fakeCache{}, sub, discardLogger(), fastOpts())

	_, err := s.Sync(context.Background())
	require.NoError(t, err)

	require.Len(t, sub.batches, 1)
	for i, m := range sub.batches[0] {
		assert.Equal(t, int64(i+1), m.Seq)
	}
}

func TestSync_TransientFailureRetriesWholeBatch(t *testing.T) {
	q := queueWith(2)
	sub := &fakeSubmitter{respond: func(call int, batch []syncmsg.Mutation) (*syncmsg.BatchResponse, error) {
		if call == 1 {
			return nil, errors.New("connection reset")
		}
		return allOK(batch), nil
	}}
	s := NewSyncer(q, &fakeCache{}, sub, discardLogger(), fastOpts())

	report, err := s.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sub.calls)
	assert.Equal(t, 2, report.Processed)

	// Both attempts carried the identical batch.
	assert.Equal(t, sub.batches[0], sub.batches[1])
}

func TestSync_ExhaustedRetriesLeaveQueueUntouched(t *testing.T) {
	q := queueWith(2)
	sub := &fakeSubmitter{respond: func(int, []syncmsg.Mutation) (*syncmsg.BatchResponse, error) {
		return nil, errors.New("timeout")
	}}
	s := NewSyncer(q, &fakeCache{}, sub, discardLogger(), fastOpts())

	_, err := s.Sync(context.Background())
	require.Error(t, err)
	assert.Equal(t, 3, sub.calls) // initial attempt + 2 retries
	assert.Empty(t, q.removed)

	n, _ := q.Count(context.Background())
	assert.Equal(t, 2, n)
}

func TestSync_UnauthorizedIsNotRetried(t *testing.T) {
	q := queueWith(1)
	sub := &fakeSubmitter{respond: func(int, []syncmsg.Mutation) (*syncmsg.BatchResponse, error) {
		return nil, common.ErrUnauthorized
	}}
	s := NewSyncer(q, &fakeCache{}, sub, discardLogger(), fastOpts())

	_, err := s.Sync(context.Background())
	require.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Equal(t, 1, sub.calls)
	assert.Empty(t, q.removed)
}

func TestSync_PrunesCacheAfterCleanPass(t *testing.T) {
	q := queueWith(1)
	c := &fakeCache{}
	sub := &fakeSubmitter{respond: func(_ int, batch []syncmsg.Mutation) (*syncmsg.BatchResponse, error) {
		return allOK(batch), nil
	}}
	opts := fastOpts()
	opts.CacheMaxAge = 24 * time.Hour
	s := NewSyncer(q, c, sub, discardLogger(), opts)

	_, err := s.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, c.pruned)
}

func TestSync_PruneFailureDoesNotFailSync(t *testing.T) {
	q := queueWith(1)
	c := &fakeCache{pruneErr: errors.New("disk full")}
	sub := &fakeSubmitter{respond: func(_ int, batch []syncmsg.Mutation) (*syncmsg.BatchResponse, error) {
		return allOK(batch), nil
	}}
	opts := fastOpts()
	opts.CacheMaxAge = 24 * time.Hour
	s := NewSyncer(q, c, sub, discardLogger(), opts)

	report, err := s.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
}

func TestSync_NoPruneWhenDisabledOrDirtyPass(t *testing.T) {
	q := queueWith(1)
	c := &fakeCache{}
	sub := &fakeSubmitter{respond: func(_ int, batch []syncmsg.Mutation) (*syncmsg.BatchResponse, error) {
		return &syncmsg.BatchResponse{
			Failed:  1,
			Results: []syncmsg.RecordResult{{Seq: batch[0].Seq, OK: false, Error: "principal mismatch"}},
		}, nil
	}}
	opts := fastOpts()
	opts.CacheMaxAge = 24 * time.Hour
	s := NewSyncer(q, c, sub, discardLogger(), opts)

	report, err := s.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Zero(t, c.pruned)
}
