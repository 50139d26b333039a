package blob

import (
	"context"
	"errors"

	"github.com/picshare/readpath/internal/cache"
	"github.com/picshare/readpath/internal/common"
	"github.com/picshare/readpath/internal/config"
	"github.com/picshare/readpath/internal/logging"
)

// Cache is the read-through image cache. Image payloads are immutable, so
// entries carry the longest TTL class and are only invalidated on post
// deletion.
//
// Missing images are remembered with an empty marker entry under a short
// TTL, bounding repeated source fetches for ids that do not exist. A zero
// negative TTL disables the marker.
type Cache struct {
	source cache.Store
	origin Source
	logger logging.Logger
	cfg    *config.Config
}

func NewCache(c cache.Store, origin Source, cfg *config.Config, logger logging.Logger) *Cache {
	return &Cache{
		source: c,
		origin: origin,
		logger: logger.With("component", "blob"),
		cfg:    cfg,
	}
}

// GetImage returns the image payload for a post, cache first. An unknown
// id yields common.ErrNotFound.
func (c *Cache) GetImage(ctx context.Context, imageID int64) (*Image, error) {
	key := cache.ImageKey(imageID)

	if payload, ok := c.source.Get(ctx, key); ok {
		if len(payload) == 0 {
			return nil, common.ErrNotFound
		}
		var img Image
		if err := cache.Decode(payload, &img); err == nil {
			return &img, nil
		}
		c.source.Invalidate(ctx, key)
	}

	img, err := c.origin.Fetch(ctx, imageID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) && c.cfg.NegativeImageTTL > 0 {
			c.source.Set(ctx, key, []byte{}, c.cfg.NegativeImageTTL)
		}
		return nil, err
	}

	payload, err := cache.Encode(img)
	if err != nil {
		c.logger.Warn(ctx, "image encode error", "err", err)
		return img, nil
	}
	c.source.Set(ctx, key, payload, c.cfg.ImageTTL)

	return img, nil
}
