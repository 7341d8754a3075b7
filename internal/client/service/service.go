// Package service is the surface the host application talks to: writes are
// intercepted into the pending queue, reads of reference content go
// through the local cache, and the number of unsynced changes is exposed
// so the UI never misleads the user about durability.
package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/avelichka/lectern/internal/client/cache"
	"github.com/avelichka/lectern/internal/client/connectivity"
	"github.com/avelichka/lectern/internal/client/queue"
	"github.com/avelichka/lectern/internal/logging"
	"github.com/avelichka/lectern/internal/syncmsg"
)

// Nudger pokes the sync trigger after an online write; *trigger.Trigger
// satisfies it.
type Nudger interface {
	SyncNow()
}

// Service is the client engine's application-facing API.
type Service interface {
	// Write records a mutation. The entry is durably queued before Write
	// returns; while online a sync pass is nudged immediately, while
	// offline the entry simply waits for the next trigger.
	Write(ctx context.Context, class string, op syncmsg.Operation, payload []byte) (int64, error)

	// PendingCount returns the number of queued-but-unsynced changes.
	PendingCount(ctx context.Context) (int, error)

	// CacheContent stores reference content fetched online so it renders
	// instantly offline. Non-cacheable keys are skipped silently.
	CacheContent(ctx context.Context, class, id, variant string, payload []byte) error

	// ReadContent returns previously cached content, or common.ErrNotFound.
	ReadContent(ctx context.Context, class, id, variant string) ([]byte, error)
}

type syncService struct {
	queue     queue.Repository
	cache     cache.Repository
	monitor   *connectivity.Monitor
	nudger    Nudger
	logger    logging.Logger
	principal string
}

func New(q queue.Repository, c cache.Repository, monitor *connectivity.Monitor, nudger Nudger, logger logging.Logger, principal string) Service {
	return &syncService{
		queue:     q,
		cache:     c,
		monitor:   monitor,
		nudger:    nudger,
		logger:    logger,
		principal: principal,
	}
}

// ensureRecordID assigns a fresh id to insert payloads that do not carry
// one, so a record minted offline keeps the same identity on every
// subsequent sync attempt.
func ensureRecordID(op syncmsg.Operation, payload []byte) ([]byte, error) {
	if op != syncmsg.OpInsert {
		return payload, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}

	if raw, ok := fields["id"]; ok {
		var id string
		if err := json.Unmarshal(raw, &id); err == nil && id != "" {
			return payload, nil
		}
	}

	id, err := json.Marshal(uuid.NewString())
	if err != nil {
		return nil, err
	}
	fields["id"] = id

	return json.Marshal(fields)
}

func (s *syncService) Write(ctx context.Context, class string, op syncmsg.Operation, payload []byte) (int64, error) {
	payload, err := ensureRecordID(op, payload)
	if err != nil {
		return 0, err
	}

	seq, err := s.queue.Enqueue(ctx, class, op, payload, s.principal)
	if err != nil {
		return 0, fmt.Errorf("failed to queue write: %w", err)
	}

	if s.monitor.IsOnline() {
		s.nudger.SyncNow()
	} else {
		s.logger.Debug(ctx, "offline, write queued", "seq", seq, "class", class)
	}
	return seq, nil
}

func (s *syncService) PendingCount(ctx context.Context) (int, error) {
	return s.queue.Count(ctx)
}

func (s *syncService) CacheContent(ctx context.Context, class, id, variant string, payload []byte) error {
	return s.cache.Put(ctx, class, id, variant, payload)
}

func (s *syncService) ReadContent(ctx context.Context, class, id, variant string) ([]byte, error) {
	return s.cache.Get(ctx, class, id, variant)
}
