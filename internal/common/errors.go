// Package common defines shared constants and sentinel errors used across
// client and server layers of Lectern. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Reconciliation errors, reported per record.
	ErrPrincipalMismatch = errors.New("principal mismatch")
	ErrClassMismatch     = errors.New("resource class conflict")
	ErrNotSyncable       = errors.New("resource class not syncable")
	ErrInvalidPayload    = errors.New("invalid payload")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Local durable storage unavailable; the client must degrade to
	// online-only behavior and fail writes fast instead of dropping them.
	ErrStoreUnavailable = errors.New("local store unavailable")
)
