package users

import (
	"context"

	"github.com/picshare/readpath/internal/models"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByAccountName(ctx context.Context, accountName string) (*models.User, error)

	// GetByIDs is the bulk author fetch of the feed path: one round trip for
	// the distinct owner set of a page window.
	GetByIDs(ctx context.Context, ids []int64) (map[int64]models.User, error)

	// SetDeleted flips the account-active flag (administrative write).
	SetDeleted(ctx context.Context, id int64, deleted bool) error
}
