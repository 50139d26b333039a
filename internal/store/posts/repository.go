package posts

import (
	"context"
	"time"

	"github.com/picshare/readpath/internal/models"
)

type Repository interface {
	// Create inserts the post together with its image bytes and fills in the
	// generated id and creation timestamp.
	Create(ctx context.Context, post *models.Post, imgdata []byte) (*models.Post, error)

	// Get returns the post row without image bytes.
	Get(ctx context.Context, id int64) (*models.Post, error)

	// GetByIDs bulk-fetches post rows (no image bytes) for a page window.
	GetByIDs(ctx context.Context, ids []int64) (map[int64]models.Post, error)

	// ListPage returns one keyset page ordered by created_at DESC, id DESC,
	// restricted to active authors. A zero createdBefore means the first
	// page; otherwise only rows strictly before (createdBefore, idBefore)
	// in that ordering are returned.
	ListPage(ctx context.Context, createdBefore time.Time, idBefore int64, limit int) ([]models.Post, error)

	// GetImage returns the minimal blob projection: content type and bytes,
	// never the rest of the row.
	GetImage(ctx context.Context, id int64) (mime string, data []byte, err error)

	// Delete removes a post (administrative action).
	Delete(ctx context.Context, id int64) error
}
