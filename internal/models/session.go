package models

import "time"

// Session maps an opaque token to a user id. Its expiry is a store-of-record
// concept, independent of any cache TTL: the cache only accelerates lookup.
type Session struct {
	Token     string    `msgpack:"token"`
	UserID    int64     `msgpack:"user_id"`
	ExpiresAt time.Time `msgpack:"expires_at"`
	CreatedAt time.Time `msgpack:"created_at"`
}
