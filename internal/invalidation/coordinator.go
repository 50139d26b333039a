// Package invalidation maps store-of-record writes to the cache entries
// they stale. Write paths call the matching hook strictly after the store
// write commits and before returning, so a writer re-reading its own data
// never sees the pre-write cache entry.
package invalidation

import (
	"context"

	"github.com/picshare/readpath/internal/cache"
	"github.com/picshare/readpath/internal/logging"
)

// Coordinator owns the write→invalidation mapping. Invalidation follows
// the cache's fail-open contract: a backend error costs freshness for at
// most one TTL window, never correctness of the store of record.
type Coordinator struct {
	cache  cache.Store
	logger logging.Logger
}

func NewCoordinator(c cache.Store, logger logging.Logger) *Coordinator {
	return &Coordinator{
		cache:  c,
		logger: logger.With("component", "invalidation"),
	}
}

// OnPostCreated drops every cached feed window. A new post shifts the
// content of the first page and potentially every window behind it; per-post
// entries of other posts stay valid and are left alone.
func (c *Coordinator) OnPostCreated(ctx context.Context, postID int64) {
	c.cache.InvalidatePrefix(ctx, cache.PrefixFeed)
	c.logger.Debug(ctx, "invalidated feed windows", "cause", "post created", "post_id", postID)
}

// OnCommentCreated drops the enriched entry of the commented post. Feed
// windows hold ids only, so they stay valid and re-enrich through the
// per-post path.
func (c *Coordinator) OnCommentCreated(ctx context.Context, postID int64) {
	c.cache.Invalidate(ctx, cache.PostKey(postID))
	c.logger.Debug(ctx, "invalidated post entry", "cause", "comment created", "post_id", postID)
}

// OnPostDeleted drops the post's enriched entry, its image payload and
// every feed window that may list it.
func (c *Coordinator) OnPostDeleted(ctx context.Context, postID int64) {
	c.cache.Invalidate(ctx, cache.PostKey(postID))
	c.cache.Invalidate(ctx, cache.ImageKey(postID))
	c.cache.InvalidatePrefix(ctx, cache.PrefixFeed)
	c.logger.Debug(ctx, "invalidated post, image and feed windows", "cause", "post deleted", "post_id", postID)
}

// OnUserStatusChanged handles account activation flips. Feed windows and
// enriched entries embed author state, so both classes go coarsely; the
// login entry for the account goes so a banned user cannot authenticate
// from a stale row. Session entries are left to run out their short TTL.
func (c *Coordinator) OnUserStatusChanged(ctx context.Context, accountName string) {
	c.cache.InvalidatePrefix(ctx, cache.PrefixFeed)
	c.cache.InvalidatePrefix(ctx, cache.PrefixPost)
	c.cache.Invalidate(ctx, cache.LoginKey(accountName))
	c.logger.Debug(ctx, "invalidated feed, post and login entries", "cause", "user status changed", "account", accountName)
}
