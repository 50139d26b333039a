package sessions

import (
	"context"
	"time"

	"github.com/picshare/readpath/internal/models"
)

// Repository owns the store-of-record session rows. The cache layer only
// accelerates lookups; session lifetime lives here.
type Repository interface {
	Create(ctx context.Context, token string, userID int64, validity time.Duration) error

	// GetByToken returns the session, or an error when the token is unknown
	// or past its store-of-record expiry.
	GetByToken(ctx context.Context, token string) (*models.Session, error)

	Delete(ctx context.Context, token string) error
}
