// Package store owns access to the relational store: the connection
// manager, the per-entity repositories beneath it, and schema migrations.
//
// Every other component borrows connections through Manager; nothing else
// creates or destroys store connections.
package store

import (
	"context"

	"github.com/picshare/readpath/internal/dbx"
	"github.com/picshare/readpath/internal/store/comments"
	"github.com/picshare/readpath/internal/store/posts"
	"github.com/picshare/readpath/internal/store/sessions"
	"github.com/picshare/readpath/internal/store/users"
)

// Manager hands out health-checked store connections with a bounded retry
// budget and vends repositories bound to them.
//
// WithConn and WithTx guarantee release of the underlying connection on
// every exit path, including error paths, and bound the callback context
// with the configured query timeout. When no connection can be established
// within the retry budget, they return common.ErrStoreUnavailable.
type Manager interface {
	WithConn(ctx context.Context, fn func(ctx context.Context, db dbx.DBTX) error) error
	WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error

	Users(db dbx.DBTX) users.Repository
	Posts(db dbx.DBTX) posts.Repository
	Comments(db dbx.DBTX) comments.Repository
	Sessions(db dbx.DBTX) sessions.Repository

	RunMigrations(ctx context.Context) error
	Close() error
}
