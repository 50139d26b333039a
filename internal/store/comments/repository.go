package comments

import (
	"context"

	"github.com/picshare/readpath/internal/models"
)

type Repository interface {
	// Create inserts the comment and fills in the generated id and creation
	// timestamp.
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)

	// CountsByPostIDs returns the comment count per post id for the window,
	// in one round trip. Posts without comments are absent from the map.
	CountsByPostIDs(ctx context.Context, postIDs []int64) (map[int64]int, error)

	// RecentByPostIDs returns the n most recent comments per post id, each
	// list in chronological order with the commenter's account name joined
	// in, in one round trip.
	RecentByPostIDs(ctx context.Context, postIDs []int64, n int) (map[int64][]models.CommentPreview, error)
}
