package records

import (
	"context"

	"github.com/avelichka/lectern/internal/common"
	"github.com/avelichka/lectern/internal/logging"
	"github.com/avelichka/lectern/internal/syncmsg"
)

// Service applies batches of client mutations to the canonical store with
// ownership checks, allow-list enforcement and last-write-wins conflict
// resolution.
type Service struct {
	repo   Repository
	logger logging.Logger
}

func NewService(repo Repository, logger logging.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Reconcile processes the batch in submitted order and returns one result
// per entry. Entries are independent atomic units: a rejected or failed
// entry never aborts the rest of the batch, and there is no cross-entry
// staging or two-phase commit.
func (s *Service) Reconcile(ctx context.Context, callerPrincipal string, batch []syncmsg.Mutation) []syncmsg.RecordResult {
	results := make([]syncmsg.RecordResult, 0, len(batch))

	for i := range batch {
		m := &batch[i]
		if err := s.apply(ctx, callerPrincipal, m); err != nil {
			s.logger.Warn(ctx, "mutation rejected",
				"seq", m.Seq, "class", m.Class, "op", m.Op, "reason", err.Error())
			results = append(results, syncmsg.RecordResult{Seq: m.Seq, OK: false, Error: err.Error()})
			continue
		}
		results = append(results, syncmsg.RecordResult{Seq: m.Seq, OK: true})
	}

	return results
}

func (s *Service) apply(ctx context.Context, callerPrincipal string, m *syncmsg.Mutation) error {
	if err := m.Validate(); err != nil {
		return err
	}

	// Ownership first: a compromised or buggy client must not write on
	// behalf of another identity, whatever else the entry claims.
	if m.Principal != callerPrincipal {
		return common.ErrPrincipalMismatch
	}

	class, err := ParseClass(m.Class)
	if err != nil {
		return err
	}

	switch m.Op {
	case syncmsg.OpInsert, syncmsg.OpUpdate:
		recordID, err := class.ValidatePayload(m.Payload)
		if err != nil {
			return err
		}
		// Insert is an upsert keyed by the record id, so a replay after a
		// lost response lands on the same row.
		return s.repo.Upsert(ctx, &Record{
			ID:        recordID,
			Principal: callerPrincipal,
			Class:     class,
			Payload:   m.Payload,
		})
	case syncmsg.OpDelete:
		// A delete is keyed by id alone; the full record shape is not
		// required and may no longer exist on the client.
		recordID, err := class.RecordID(m.Payload)
		if err != nil {
			return err
		}
		return s.repo.Delete(ctx, recordID, callerPrincipal)
	default:
		// Unreachable: Validate accepted the operation above.
		return common.ErrInternal
	}
}
