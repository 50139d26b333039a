package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"

	"github.com/picshare/readpath/internal/common"
	"github.com/picshare/readpath/internal/config"
	"github.com/picshare/readpath/internal/dbx"
	"github.com/picshare/readpath/internal/logging"
	"github.com/picshare/readpath/internal/store/comments"
	"github.com/picshare/readpath/internal/store/migrations"
	"github.com/picshare/readpath/internal/store/posts"
	"github.com/picshare/readpath/internal/store/sessions"
	"github.com/picshare/readpath/internal/store/users"
)

// PostgresManager is the Manager implementation over database/sql with the
// pgx stdlib driver.
type PostgresManager struct {
	db     *sql.DB
	logger logging.Logger
	cfg    *config.Config
}

func NewPostgresManager(cfg *config.Config, logger logging.Logger) (*PostgresManager, error) {
	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return NewPostgresManagerWithDB(db, cfg, logger), nil
}

// NewPostgresManagerWithDB wraps an existing handle. Tests use it to inject
// sqlmock.
func NewPostgresManagerWithDB(db *sql.DB, cfg *config.Config, logger logging.Logger) *PostgresManager {
	return &PostgresManager{
		db:     db,
		logger: logger.With("component", "store"),
		cfg:    cfg,
	}
}

// acquire hands out a pooled connection after a liveness check. Dead
// connections are closed and replaced; attempts are bounded by the
// configured retry count with exponential backoff, each attempt limited to
// the connect timeout.
func (m *PostgresManager) acquire(ctx context.Context) (*sql.Conn, error) {
	var conn *sql.Conn

	backoff := retry.WithMaxRetries(m.cfg.ConnectRetries, retry.NewExponential(m.cfg.RetryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, m.cfg.ConnectTimeout)
		defer cancel()

		c, err := m.db.Conn(attemptCtx)
		if err != nil {
			return retry.RetryableError(err)
		}
		if err := c.PingContext(attemptCtx); err != nil {
			_ = c.Close()
			m.logger.Warn(ctx, "dead connection replaced", "err", err)
			return retry.RetryableError(err)
		}

		conn = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}

	return conn, nil
}

func (m *PostgresManager) WithConn(ctx context.Context, fn func(ctx context.Context, db dbx.DBTX) error) error {
	conn, err := m.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	opCtx, cancel := context.WithTimeout(ctx, m.cfg.QueryTimeout)
	defer cancel()

	return fn(opCtx, conn)
}

func (m *PostgresManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	conn, err := m.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	opCtx, cancel := context.WithTimeout(ctx, m.cfg.QueryTimeout)
	defer cancel()

	return dbx.WithTx(opCtx, conn, nil, fn)
}

func (m *PostgresManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresManager) Posts(db dbx.DBTX) posts.Repository {
	return posts.NewPostgresRepository(db)
}

func (m *PostgresManager) Comments(db dbx.DBTX) comments.Repository {
	return comments.NewPostgresRepository(db)
}

func (m *PostgresManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them.
func (m *PostgresManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, m.db, ".")
}

func (m *PostgresManager) Close() error {
	return m.db.Close()
}
