package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/picshare/readpath/internal/cache"
	"github.com/picshare/readpath/internal/common"
	"github.com/picshare/readpath/internal/config"
	"github.com/picshare/readpath/internal/dbx"
	"github.com/picshare/readpath/internal/logging"
	"github.com/picshare/readpath/internal/models"
	"github.com/picshare/readpath/internal/store"
)

// Page is one feed window in feed order. Next addresses the following
// window and is only meaningful when HasMore is true.
type Page struct {
	Posts   []models.EnrichedPost
	Next    Cursor
	HasMore bool
}

// Aggregator assembles enriched feed pages. Cache misses are filled with a
// constant number of bulk store queries per page, so the cost of a page
// does not grow with the number of posts on it.
type Aggregator struct {
	manager store.Manager
	cache   cache.Store
	logger  logging.Logger
	cfg     *config.Config
}

func NewAggregator(manager store.Manager, c cache.Store, cfg *config.Config, logger logging.Logger) *Aggregator {
	return &Aggregator{
		manager: manager,
		cache:   c,
		logger:  logger.With("component", "aggregator"),
		cfg:     cfg,
	}
}

// FeedPage returns the feed window addressed by cursor. Pagination is
// mandatory: pageSize is clamped to the configured bound, and a
// non-positive size falls back to the default.
//
// A fully cached window (id list plus every enriched entry) is served
// without touching the store. On partial or full misses, the missing
// entries are enriched inside one connection scope and the results are
// cached, unless enrichment ran degraded (comment data unavailable), in
// which case the page is served with zero counts and empty previews and
// nothing from this unit of work is cached.
func (a *Aggregator) FeedPage(ctx context.Context, cursor Cursor, pageSize int) (*Page, error) {
	if pageSize <= 0 || pageSize > a.cfg.PageSize {
		pageSize = a.cfg.PageSize
	}

	pageKey := cache.FeedPageKey(pageSize, cursor.String())

	ids, windowHit := a.cachedWindow(ctx, pageKey)

	enriched := map[int64]models.EnrichedPost{}
	if windowHit {
		for _, id := range ids {
			if p, ok := a.cachedPost(ctx, id); ok {
				enriched[id] = *p
			}
		}
		if len(enriched) == len(ids) {
			return a.assemble(ids, enriched, pageSize), nil
		}
	}

	degraded := false
	var fresh []models.EnrichedPost
	err := a.manager.WithConn(ctx, func(ctx context.Context, db dbx.DBTX) error {
		var missing []models.Post

		if windowHit {
			var missingIDs []int64
			for _, id := range ids {
				if _, ok := enriched[id]; !ok {
					missingIDs = append(missingIDs, id)
				}
			}
			rows, err := a.manager.Posts(db).GetByIDs(ctx, missingIDs)
			if err != nil {
				return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
			}
			// ids may reference posts deleted since the window was cached
			for _, id := range missingIDs {
				if p, ok := rows[id]; ok {
					missing = append(missing, p)
				}
			}
		} else {
			rows, err := a.manager.Posts(db).ListPage(ctx, cursor.CreatedAt, cursor.ID, pageSize)
			if err != nil {
				return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
			}
			missing = rows
			ids = make([]int64, 0, len(rows))
			for _, p := range rows {
				ids = append(ids, p.ID)
			}
		}

		var deg bool
		var enrichErr error
		fresh, deg, enrichErr = a.enrich(ctx, db, missing)
		if enrichErr != nil {
			return enrichErr
		}
		degraded = deg
		for _, e := range fresh {
			enriched[e.Post.ID] = e
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	page := a.assemble(ids, enriched, pageSize)

	if !degraded {
		a.cacheWindow(ctx, pageKey, ids)
		for _, e := range fresh {
			a.cachePost(ctx, e)
		}
	}

	return page, nil
}

// Post returns one enriched post, per-post cache first. An unknown id or a
// deactivated author yields common.ErrNotFound.
func (a *Aggregator) Post(ctx context.Context, postID int64) (*models.EnrichedPost, error) {
	if p, ok := a.cachedPost(ctx, postID); ok {
		return p, nil
	}

	var result *models.EnrichedPost
	degraded := false
	err := a.manager.WithConn(ctx, func(ctx context.Context, db dbx.DBTX) error {
		row, err := a.manager.Posts(db).Get(ctx, postID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return err
			}
			return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
		}

		fresh, deg, err := a.enrich(ctx, db, []models.Post{*row})
		if err != nil {
			return err
		}
		if len(fresh) == 0 {
			return common.ErrNotFound
		}
		degraded = deg
		result = &fresh[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !degraded {
		a.cachePost(ctx, *result)
	}
	return result, nil
}

// enrich turns post rows into enriched posts with a fixed number of bulk
// queries: authors, comment counts, recent previews. Author data is
// essential; comment data failures degrade to zero counts and empty
// previews. Posts whose author is missing or deactivated are dropped.
func (a *Aggregator) enrich(ctx context.Context, db dbx.DBTX, rows []models.Post) ([]models.EnrichedPost, bool, error) {
	if len(rows) == 0 {
		return nil, false, nil
	}

	ownerSet := map[int64]bool{}
	postIDs := make([]int64, 0, len(rows))
	for _, p := range rows {
		ownerSet[p.UserID] = true
		postIDs = append(postIDs, p.ID)
	}
	ownerIDs := make([]int64, 0, len(ownerSet))
	for id := range ownerSet {
		ownerIDs = append(ownerIDs, id)
	}

	authors, err := a.manager.Users(db).GetByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}

	degraded := false

	counts, err := a.manager.Comments(db).CountsByPostIDs(ctx, postIDs)
	if err != nil {
		a.logger.Warn(ctx, "comment count fetch failed, serving degraded page", "err", err)
		degraded = true
		counts = nil
	}

	var previews map[int64][]models.CommentPreview
	if !degraded {
		previews, err = a.manager.Comments(db).RecentByPostIDs(ctx, postIDs, a.cfg.RecentComments)
		if err != nil {
			a.logger.Warn(ctx, "comment preview fetch failed, serving degraded page", "err", err)
			degraded = true
			previews = nil
		}
	}

	out := make([]models.EnrichedPost, 0, len(rows))
	for _, p := range rows {
		author, ok := authors[p.UserID]
		if !ok || !author.Active() {
			continue
		}
		out = append(out, models.EnrichedPost{
			Post:           p,
			Author:         author.Summary(),
			CommentCount:   counts[p.ID],
			RecentComments: previews[p.ID],
		})
	}
	return out, degraded, nil
}

// assemble orders enriched entries by the window's id list and derives the
// next cursor.
func (a *Aggregator) assemble(ids []int64, enriched map[int64]models.EnrichedPost, pageSize int) *Page {
	page := &Page{Posts: make([]models.EnrichedPost, 0, len(ids))}
	for _, id := range ids {
		if e, ok := enriched[id]; ok {
			page.Posts = append(page.Posts, e)
		}
	}
	if len(ids) == pageSize && len(page.Posts) > 0 {
		page.Next = After(page.Posts[len(page.Posts)-1].Post)
		page.HasMore = true
	}
	return page
}

func (a *Aggregator) cachedWindow(ctx context.Context, key string) ([]int64, bool) {
	payload, ok := a.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var ids []int64
	if err := cache.Decode(payload, &ids); err != nil {
		a.cache.Invalidate(ctx, key)
		return nil, false
	}
	return ids, true
}

func (a *Aggregator) cacheWindow(ctx context.Context, key string, ids []int64) {
	payload, err := cache.Encode(ids)
	if err != nil {
		a.logger.Warn(ctx, "window encode error", "err", err)
		return
	}
	a.cache.Set(ctx, key, payload, a.cfg.FeedTTL)
}

func (a *Aggregator) cachedPost(ctx context.Context, id int64) (*models.EnrichedPost, bool) {
	payload, ok := a.cache.Get(ctx, cache.PostKey(id))
	if !ok {
		return nil, false
	}
	var e models.EnrichedPost
	if err := cache.Decode(payload, &e); err != nil {
		a.cache.Invalidate(ctx, cache.PostKey(id))
		return nil, false
	}
	return &e, true
}

func (a *Aggregator) cachePost(ctx context.Context, e models.EnrichedPost) {
	payload, err := cache.Encode(e)
	if err != nil {
		a.logger.Warn(ctx, "post encode error", "err", err)
		return
	}
	a.cache.Set(ctx, cache.PostKey(e.Post.ID), payload, a.cfg.PostTTL)
}
