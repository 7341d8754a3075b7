// Package cache is the durable local store of read-mostly reference
// content, keyed by (resource class, resource id, variant). It exists so
// previously viewed content renders instantly while offline.
package cache

import (
	"context"
	"time"
)

// CachedContent is one offline-readable unit of reference content.
type CachedContent struct {
	Class    string
	ID       string
	Variant  string
	Payload  []byte
	CachedAt time.Time
}

// Repository persists cached content. At most one live row exists per
// (class, id, variant); Put replaces atomically.
type Repository interface {
	// Put stores payload under the composite key, replacing any previous
	// value. Keys outside the cacheable allow-list are silently skipped:
	// access-controlled content must never land in the local store.
	Put(ctx context.Context, class, id, variant string, payload []byte) error

	// Get returns the payload for the composite key, or common.ErrNotFound.
	// It never touches the network.
	Get(ctx context.Context, class, id, variant string) ([]byte, error)

	// PruneOlderThan deletes entries cached before cutoff and returns the
	// number of rows removed. The cache has no other eviction.
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Allowlist is the closed set of (class, variant) pairs eligible for
// offline caching. Only content variants free of per-user restriction
// belong here.
type Allowlist map[string]map[string]struct{}

// Allows reports whether the given class/variant pair may be cached.
func (a Allowlist) Allows(class, variant string) bool {
	variants, ok := a[class]
	if !ok {
		return false
	}
	_, ok = variants[variant]
	return ok
}

// DefaultAllowlist covers chapter content in public-domain translations.
func DefaultAllowlist() Allowlist {
	return Allowlist{
		"chapter": {
			"translation=KJV": {},
			"translation=WEB": {},
			"translation=ASV": {},
		},
	}
}
