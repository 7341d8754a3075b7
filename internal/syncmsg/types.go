// Package syncmsg defines the wire types exchanged between the client's
// reconciliation pass and the server's /sync endpoint. Both sides share
// these shapes so the contract lives in one place.
package syncmsg

import (
	"encoding/json"
	"fmt"
	"time"
)

// Operation is the kind of mutation recorded while offline.
type Operation string

const (
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Valid reports whether op is one of the known operations.
func (op Operation) Valid() bool {
	switch op {
	case OpInsert, OpUpdate, OpDelete:
		return true
	}
	return false
}

// Mutation is one unit of work to replay against the canonical store.
//
// Seq is the client-local sequence id; it is assigned at enqueue time,
// increases monotonically and orders replay. The server echoes it back in
// the per-record result so the client can remove exactly the confirmed
// entries.
type Mutation struct {
	Seq       int64           `json:"seq"`
	Class     string          `json:"class"`
	Op        Operation       `json:"op"`
	Payload   json.RawMessage `json:"payload"`
	Principal string          `json:"principal"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Validate checks the structural invariants of a mutation before it is
// enqueued or applied. Class membership in an allow-list is checked
// separately on each side.
func (m *Mutation) Validate() error {
	if m.Class == "" {
		return fmt.Errorf("mutation %d: empty resource class", m.Seq)
	}
	if !m.Op.Valid() {
		return fmt.Errorf("mutation %d: unknown operation %q", m.Seq, m.Op)
	}
	if m.Principal == "" {
		return fmt.Errorf("mutation %d: empty principal", m.Seq)
	}
	if len(m.Payload) == 0 {
		return fmt.Errorf("mutation %d: empty payload", m.Seq)
	}
	return nil
}

// BatchRequest is the body of POST /sync.
type BatchRequest struct {
	Records []Mutation `json:"records"`
}

// RecordResult is the per-record outcome of a reconciliation pass.
// A failure on one record never aborts the rest of the batch.
type RecordResult struct {
	Seq   int64  `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BatchResponse is the body of a successful POST /sync response.
type BatchResponse struct {
	OK        bool           `json:"ok"`
	Processed int            `json:"processed"`
	Failed    int            `json:"failed"`
	Results   []RecordResult `json:"results"`
}
