package records

import (
	"encoding/json"
	"time"
)

// Record is the canonical stored row affected by a mutation. Every record
// is owned by exactly one principal; updated_at is the conflict-resolution
// clock and is stamped by the server alone.
type Record struct {
	ID        string
	Principal string
	Class     ResourceClass
	Payload   json.RawMessage
	UpdatedAt time.Time
}
