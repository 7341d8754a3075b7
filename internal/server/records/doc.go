// Package records owns the canonical store and the reconciliation
// semantics applied to batches of client mutations.
//
// Conflict policy is whole-record last-write-wins: the server stamps
// updated_at with its own clock on every applied write and never compares
// against the stored timestamp first. A genuinely concurrent edit on two
// devices resolves to whichever arrives later, with no merge. This is a
// deliberate scope decision matching the low write-contention,
// single-device-per-session usage the engine serves, not a gap to be
// upgraded to a CRDT. Determinism for same-record mutations from one
// device comes from the client queue's replay order.
//
// The server is the sole author of updated_at, so a client cannot spoof
// recency to win a conflict.
package records
