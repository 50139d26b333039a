package content

import (
	"context"
	"fmt"

	"github.com/picshare/readpath/internal/config"
	"github.com/picshare/readpath/internal/dbx"
	"github.com/picshare/readpath/internal/invalidation"
	"github.com/picshare/readpath/internal/logging"
	"github.com/picshare/readpath/internal/models"
	"github.com/picshare/readpath/internal/store"
)

// ErrInvalidUpload rejects uploads with an unsupported content type or an
// oversized payload.
var ErrInvalidUpload = fmt.Errorf("invalid upload")

var allowedMimes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// Writer owns the post and comment write path. Every write commits to the
// store of record first, then runs the matching invalidation hook before
// returning, so a subsequent read by the same caller reflects the write.
type Writer struct {
	manager     store.Manager
	coordinator *invalidation.Coordinator
	logger      logging.Logger
	cfg         *config.Config
}

func NewWriter(manager store.Manager, coordinator *invalidation.Coordinator, cfg *config.Config, logger logging.Logger) *Writer {
	return &Writer{
		manager:     manager,
		coordinator: coordinator,
		logger:      logger.With("component", "writer"),
		cfg:         cfg,
	}
}

// CreatePost validates and stores a new post with its image bytes, then
// drops the cached feed windows. Only jpeg, png and gif uploads within the
// configured size limit are accepted.
func (w *Writer) CreatePost(ctx context.Context, userID int64, mime, body string, imgdata []byte) (*models.Post, error) {
	if !allowedMimes[mime] {
		return nil, fmt.Errorf("%w: unsupported content type %q", ErrInvalidUpload, mime)
	}
	if int64(len(imgdata)) > w.cfg.UploadLimit {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", ErrInvalidUpload, w.cfg.UploadLimit)
	}

	var created *models.Post
	err := w.manager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		created, err = w.manager.Posts(tx).Create(ctx, &models.Post{
			UserID: userID,
			Mime:   mime,
			Body:   body,
		}, imgdata)
		return err
	})
	if err != nil {
		return nil, err
	}

	w.coordinator.OnPostCreated(ctx, created.ID)
	w.logger.Info(ctx, "post created", "post_id", created.ID, "user_id", userID)
	return created, nil
}

// CreateComment stores a comment, then drops the commented post's enriched
// cache entry.
func (w *Writer) CreateComment(ctx context.Context, postID, userID int64, body string) (*models.Comment, error) {
	var created *models.Comment
	err := w.manager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := w.manager.Posts(tx).Get(ctx, postID); err != nil {
			return err
		}
		var err error
		created, err = w.manager.Comments(tx).Create(ctx, &models.Comment{
			PostID: postID,
			UserID: userID,
			Body:   body,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	w.coordinator.OnCommentCreated(ctx, postID)
	return created, nil
}

// DeletePost removes a post (administrative action), then drops its
// enriched entry, its image payload and the cached feed windows. Deleting
// an unknown post yields common.ErrNotFound.
func (w *Writer) DeletePost(ctx context.Context, postID int64) error {
	err := w.manager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return w.manager.Posts(tx).Delete(ctx, postID)
	})
	if err != nil {
		return err
	}

	w.coordinator.OnPostDeleted(ctx, postID)
	w.logger.Info(ctx, "post deleted", "post_id", postID)
	return nil
}
