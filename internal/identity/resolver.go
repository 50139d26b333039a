package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/picshare/readpath/internal/cache"
	"github.com/picshare/readpath/internal/common"
	"github.com/picshare/readpath/internal/config"
	"github.com/picshare/readpath/internal/dbx"
	"github.com/picshare/readpath/internal/logging"
	"github.com/picshare/readpath/internal/models"
	"github.com/picshare/readpath/internal/store"
)

// Resolver turns opaque session tokens and login credentials into user
// rows. Hot lookups are served from the cache; misses collapse the
// session→user chain into a single scoped store connection.
//
// Negative outcomes (unknown token, bad credentials, deactivated account)
// are never cached, so a banned user regains no access through a stale
// entry beyond the session TTL.
type Resolver struct {
	manager  store.Manager
	cache    cache.Store
	verifier Verifier
	logger   logging.Logger
	cfg      *config.Config
}

func NewResolver(manager store.Manager, c cache.Store, verifier Verifier, cfg *config.Config, logger logging.Logger) *Resolver {
	return &Resolver{
		manager:  manager,
		cache:    c,
		verifier: verifier,
		logger:   logger.With("component", "identity"),
		cfg:      cfg,
	}
}

// Resolve maps a session token to its active user. Unknown or expired
// tokens and deactivated accounts yield common.ErrUnauthenticated; a store
// outage on a cache miss yields common.ErrStoreUnavailable.
func (r *Resolver) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrUnauthenticated
	}

	key := cache.SessionKey(token)
	if payload, ok := r.cache.Get(ctx, key); ok {
		var user models.User
		if err := cache.Decode(payload, &user); err == nil {
			return &user, nil
		}
		// Undecodable entry: drop it and fall through to the store.
		r.logger.Warn(ctx, "corrupt session cache entry", "err", "decode failed")
		r.cache.Invalidate(ctx, key)
	}

	var user *models.User
	err := r.manager.WithConn(ctx, func(ctx context.Context, db dbx.DBTX) error {
		session, err := r.manager.Sessions(db).GetByToken(ctx, token)
		if err != nil {
			return err
		}
		user, err = r.manager.Users(db).GetByID(ctx, session.UserID)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthenticated
		}
		return nil, err
	}
	if !user.Active() {
		return nil, common.ErrUnauthenticated
	}

	r.cacheUser(ctx, key, user, "session")
	return user, nil
}

// Login verifies credentials and opens a session, returning the user and
// the new opaque token. The account→row lookup is cached under the login
// TTL class; failed verifications cache nothing.
func (r *Resolver) Login(ctx context.Context, accountName, password string) (*models.User, string, error) {
	user, err := r.lookupAccount(ctx, accountName)
	if err != nil {
		return nil, "", err
	}
	if !r.verifier.Verify(user, password) {
		return nil, "", common.ErrUnauthenticated
	}

	token := uuid.NewString()
	err = r.manager.WithConn(ctx, func(ctx context.Context, db dbx.DBTX) error {
		return r.manager.Sessions(db).Create(ctx, token, user.ID, r.cfg.SessionValidity)
	})
	if err != nil {
		return nil, "", fmt.Errorf("session create error: %w", err)
	}

	r.cacheUser(ctx, cache.SessionKey(token), user, "session")
	return user, token, nil
}

// Logout deletes the store-of-record session row, then invalidates its
// cache entry. The row goes first so a re-read can never repopulate the
// cache from a session that is about to disappear.
func (r *Resolver) Logout(ctx context.Context, token string) error {
	err := r.manager.WithConn(ctx, func(ctx context.Context, db dbx.DBTX) error {
		return r.manager.Sessions(db).Delete(ctx, token)
	})
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}
	r.cache.Invalidate(ctx, cache.SessionKey(token))
	return nil
}

// lookupAccount fetches the active user row for an account name, reading
// through the login cache class. Only existing active rows are cached.
func (r *Resolver) lookupAccount(ctx context.Context, accountName string) (*models.User, error) {
	key := cache.LoginKey(accountName)
	if payload, ok := r.cache.Get(ctx, key); ok {
		var user models.User
		if err := cache.Decode(payload, &user); err == nil {
			return &user, nil
		}
		r.cache.Invalidate(ctx, key)
	}

	var user *models.User
	err := r.manager.WithConn(ctx, func(ctx context.Context, db dbx.DBTX) error {
		var err error
		user, err = r.manager.Users(db).GetByAccountName(ctx, accountName)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthenticated
		}
		return nil, err
	}
	if !user.Active() {
		return nil, common.ErrUnauthenticated
	}

	r.cacheUser(ctx, key, user, "login")
	return user, nil
}

func (r *Resolver) cacheUser(ctx context.Context, key string, user *models.User, class string) {
	payload, err := cache.Encode(user)
	if err != nil {
		r.logger.Warn(ctx, "user encode error", "err", err)
		return
	}
	ttl := r.cfg.SessionTTL
	if class == "login" {
		ttl = r.cfg.LoginTTL
	}
	r.cache.Set(ctx, key, payload, ttl)
}
