package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avelichka/lectern/internal/client/cache"
	"github.com/avelichka/lectern/internal/client/queue"
	"github.com/avelichka/lectern/internal/common"
	"github.com/avelichka/lectern/internal/logging"
	"github.com/avelichka/lectern/internal/syncmsg"
	"github.com/sethvargo/go-retry"
)

// Submitter is the transport seam of the syncer; *Client is the real
// implementation, tests substitute fakes.
type Submitter interface {
	Submit(ctx context.Context, batch []syncmsg.Mutation) (*syncmsg.BatchResponse, error)
}

// Report summarizes one sync pass.
type Report struct {
	Processed int
	Failed    int
	Results   []syncmsg.RecordResult
}

// Options tunes a Syncer. Zero values select the defaults.
type Options struct {
	// MaxRetries bounds transient resubmission attempts within one Sync
	// call (default 2 retries after the initial attempt).
	MaxRetries uint64

	// RetryBase is the initial backoff between attempts (default 500ms).
	RetryBase time.Duration

	// CacheMaxAge enables age-based cache pruning after a fully
	// successful pass; 0 disables pruning.
	CacheMaxAge time.Duration
}

// Syncer coordinates the pending queue, the content cache and the remote
// endpoint.
type Syncer struct {
	queue  queue.Repository
	cache  cache.Repository
	client Submitter
	logger logging.Logger
	opts   Options
	now    func() time.Time
}

func NewSyncer(q queue.Repository, c cache.Repository, client Submitter, logger logging.Logger, opts Options) *Syncer {
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 2
	}
	if opts.RetryBase == 0 {
		opts.RetryBase = 500 * time.Millisecond
	}
	return &Syncer{
		queue:  q,
		cache:  c,
		client: client,
		logger: logger,
		opts:   opts,
		now:    time.Now,
	}
}

// Sync snapshots the queue, submits the batch in one call, and removes
// exactly the entries the server confirmed. Entries enqueued after the
// snapshot wait for the next pass; rejected entries stay queued for
// resubmission rather than being purged.
func (s *Syncer) Sync(ctx context.Context) (*Report, error) {
	batch, err := s.queue.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot queue: %w", err)
	}
	if len(batch) == 0 {
		return &Report{}, nil
	}

	s.logger.Info(ctx, "sync pass started", "batch", len(batch))

	resp, err := s.submitWithRetry(ctx, batch)
	if err != nil {
		// Transient failure of the whole batch: nothing confirmed, nothing
		// removed. Idempotent operations make a blind retry safe even if
		// the server applied the batch and the response was lost.
		return nil, err
	}

	report := &Report{Results: resp.Results}
	var confirmed []int64
	for _, res := range resp.Results {
		if !res.OK {
			report.Failed++
			s.logger.Warn(ctx, "mutation rejected", "seq", res.Seq, "reason", res.Error)
			continue
		}
		confirmed = append(confirmed, res.Seq)
	}

	// The confirmed entries leave the queue as one unit. If removal fails
	// they are resubmitted later, which idempotent operations make safe.
	if err := s.queue.Remove(ctx, confirmed...); err != nil {
		return report, fmt.Errorf("failed to remove confirmed mutations: %w", err)
	}
	report.Processed = len(confirmed)

	s.logger.Info(ctx, "sync pass finished", "processed", report.Processed, "failed", report.Failed)

	if report.Failed == 0 {
		s.pruneCache(ctx)
	}

	return report, nil
}

func (s *Syncer) submitWithRetry(ctx context.Context, batch []syncmsg.Mutation) (*syncmsg.BatchResponse, error) {
	var resp *syncmsg.BatchResponse

	backoff := retry.WithMaxRetries(s.opts.MaxRetries, retry.NewExponential(s.opts.RetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		resp, err = s.client.Submit(ctx, batch)
		if err == nil {
			return nil
		}
		if errors.Is(err, common.ErrUnauthorized) {
			// Not transient; retrying with the same token cannot succeed.
			return err
		}
		return retry.RetryableError(err)
	})
	if err != nil {
		return nil, fmt.Errorf("batch submission failed: %w", err)
	}
	return resp, nil
}

// pruneCache ages out stale cached content after a clean pass. Failure
// policy is log-and-continue: pruning is housekeeping and must never fail
// a sync that already succeeded.
func (s *Syncer) pruneCache(ctx context.Context) {
	if s.opts.CacheMaxAge <= 0 {
		return
	}
	cutoff := s.now().Add(-s.opts.CacheMaxAge)
	n, err := s.cache.PruneOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Warn(ctx, "cache prune failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Debug(ctx, "cache pruned", "removed", n)
	}
}
