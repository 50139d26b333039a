package invalidation

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/picshare/readpath/internal/cache"
	"github.com/picshare/readpath/internal/logging"
)

func newCoordinator(t *testing.T) (*Coordinator, *cache.Memory) {
	t.Helper()
	store := cache.NewMemory(cache.WithJanitorInterval(0))
	t.Cleanup(store.Close)
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewCoordinator(store, logger), store
}

func seed(store *cache.Memory, keys ...string) {
	for _, k := range keys {
		store.Set(context.Background(), k, []byte("x"), time.Minute)
	}
}

func present(store *cache.Memory, key string) bool {
	_, ok := store.Get(context.Background(), key)
	return ok
}

func TestOnPostCreated_DropsFeedWindowsOnly(t *testing.T) {
	c, store := newCoordinator(t)
	seed(store,
		cache.FeedPageKey(20, "head"),
		cache.FeedPageKey(20, "1700000000-42"),
		cache.PostKey(7),
		cache.ImageKey(7),
	)

	c.OnPostCreated(context.Background(), 99)

	assert.False(t, present(store, cache.FeedPageKey(20, "head")))
	assert.False(t, present(store, cache.FeedPageKey(20, "1700000000-42")))
	assert.True(t, present(store, cache.PostKey(7)), "other posts stay cached")
	assert.True(t, present(store, cache.ImageKey(7)))
}

func TestOnCommentCreated_DropsOnlyTheCommentedPost(t *testing.T) {
	c, store := newCoordinator(t)
	seed(store, cache.PostKey(7), cache.PostKey(8), cache.FeedPageKey(20, "head"))

	c.OnCommentCreated(context.Background(), 7)

	assert.False(t, present(store, cache.PostKey(7)))
	assert.True(t, present(store, cache.PostKey(8)))
	assert.True(t, present(store, cache.FeedPageKey(20, "head")), "id windows stay valid")
}

func TestOnPostDeleted_DropsPostImageAndFeeds(t *testing.T) {
	c, store := newCoordinator(t)
	seed(store,
		cache.PostKey(7),
		cache.ImageKey(7),
		cache.FeedPageKey(20, "head"),
		cache.PostKey(8),
	)

	c.OnPostDeleted(context.Background(), 7)

	assert.False(t, present(store, cache.PostKey(7)))
	assert.False(t, present(store, cache.ImageKey(7)))
	assert.False(t, present(store, cache.FeedPageKey(20, "head")))
	assert.True(t, present(store, cache.PostKey(8)))
}

func TestOnUserStatusChanged_DropsFeedsPostsAndLogin(t *testing.T) {
	c, store := newCoordinator(t)
	seed(store,
		cache.FeedPageKey(20, "head"),
		cache.PostKey(7),
		cache.LoginKey("mary"),
		cache.LoginKey("john"),
		cache.SessionKey("tok"),
		cache.ImageKey(7),
	)

	c.OnUserStatusChanged(context.Background(), "mary")

	assert.False(t, present(store, cache.FeedPageKey(20, "head")))
	assert.False(t, present(store, cache.PostKey(7)))
	assert.False(t, present(store, cache.LoginKey("mary")))
	assert.True(t, present(store, cache.LoginKey("john")))
	assert.True(t, present(store, cache.SessionKey("tok")), "sessions expire within their TTL")
	assert.True(t, present(store, cache.ImageKey(7)), "image payloads are immutable")
}
