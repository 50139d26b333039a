// Package common defines shared sentinel errors used across the read-path
// layer. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// ErrStoreUnavailable means the relational store could not be reached
	// within the configured retry budget. It is never absorbed: it must
	// propagate to the request boundary.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrUnauthenticated means no valid session or credential was presented.
	// Negative identity results are never cached.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotFound means a referenced entity is absent from the store.
	ErrNotFound = errors.New("not found")
)
