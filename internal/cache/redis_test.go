package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picshare/readpath/internal/logging"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewRedis(client, logger), mr
}

func TestRedis_GetAfterSet(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()

	r.Set(ctx, "k", []byte("v"), time.Minute)

	got, ok := r.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestRedis_MissOnUnknownKey(t *testing.T) {
	r, _ := newTestRedis(t)

	_, ok := r.Get(context.Background(), "nope")
	assert.False(t, ok)
}

func TestRedis_TTLExpiry(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	r.Set(ctx, "k", []byte("v"), time.Minute)

	mr.FastForward(59 * time.Second)
	_, ok := r.Get(ctx, "k")
	assert.True(t, ok)

	mr.FastForward(time.Second)
	_, ok = r.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedis_InvalidatePrefix(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()

	r.Set(ctx, "feed:20:head", []byte("a"), time.Minute)
	r.Set(ctx, "feed:20:42-1", []byte("b"), time.Minute)
	r.Set(ctx, "image:42", []byte("c"), time.Minute)

	r.InvalidatePrefix(ctx, "feed:")

	_, ok := r.Get(ctx, "feed:20:head")
	assert.False(t, ok)
	_, ok = r.Get(ctx, "feed:20:42-1")
	assert.False(t, ok)
	_, ok = r.Get(ctx, "image:42")
	assert.True(t, ok)
}

func TestRedis_FailsOpenWhenBackendDown(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	r.Set(ctx, "k", []byte("v"), time.Minute)
	mr.Close()

	// a dead backend is a miss, never an error surfaced to the caller
	_, ok := r.Get(ctx, "k")
	assert.False(t, ok)

	// and writes/invalidations are silent no-ops
	r.Set(ctx, "k2", []byte("v2"), time.Minute)
	r.Invalidate(ctx, "k")
	r.InvalidatePrefix(ctx, "feed:")
}
