// Package cache implements the time-bounded key-value store that sits
// between the request handlers and the relational store.
//
// Every implementation fails open: a backend error on Get is reported as a
// miss and a backend error on Set/Invalidate is a logged no-op, so a cache
// outage can never become a user-visible failure. Callers must always be
// able to fall back to the source of truth.
package cache

import (
	"context"
	"time"
)

// Store is the caching contract shared by the read-path components.
//
// Get on an expired entry behaves identically to Get on a missing key:
// callers cannot distinguish "never set" from "expired". Set overwrites
// unconditionally (last-writer-wins; values are derived, not authoritative).
type Store interface {
	// Get returns the payload stored under key, or ok=false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key for ttl. The entry is replaced atomically.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Invalidate removes a single entry.
	Invalidate(ctx context.Context, key string)

	// InvalidatePrefix removes every entry whose key starts with prefix.
	InvalidatePrefix(ctx context.Context, prefix string)
}
