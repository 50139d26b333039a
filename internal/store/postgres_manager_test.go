package store

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picshare/readpath/internal/common"
	"github.com/picshare/readpath/internal/config"
	"github.com/picshare/readpath/internal/dbx"
	"github.com/picshare/readpath/internal/logging"
)

func newManagerWithMock(t *testing.T) (*PostgresManager, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ConnectRetries = 2
	cfg.RetryBackoff = time.Millisecond

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewPostgresManagerWithDB(db, cfg, logger), mock, db
}

func TestWithConn_RunsCallbackOnLiveConnection(t *testing.T) {
	m, mock, db := newManagerWithMock(t)
	defer db.Close()

	mock.ExpectPing()
	mock.ExpectExec("SELECT 1").WillReturnResult(sqlmock.NewResult(0, 0))

	err := m.WithConn(context.Background(), func(ctx context.Context, db dbx.DBTX) error {
		_, err := db.ExecContext(ctx, "SELECT 1")
		return err
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithConn_CallbackHasQueryDeadline(t *testing.T) {
	m, mock, db := newManagerWithMock(t)
	defer db.Close()

	mock.ExpectPing()

	err := m.WithConn(context.Background(), func(ctx context.Context, _ dbx.DBTX) error {
		deadline, ok := ctx.Deadline()
		assert.True(t, ok, "callback context must carry the query timeout")
		assert.LessOrEqual(t, time.Until(deadline), 30*time.Second)
		return nil
	})
	require.NoError(t, err)
}

func TestWithConn_SurfacesStoreUnavailableAfterRetries(t *testing.T) {
	m, mock, db := newManagerWithMock(t)
	defer db.Close()

	// initial attempt plus two retries
	for i := 0; i < 3; i++ {
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	}

	err := m.WithConn(context.Background(), func(context.Context, dbx.DBTX) error {
		t.Fatal("callback must not run without a live connection")
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithConn_RecoversAfterTransientFailure(t *testing.T) {
	m, mock, db := newManagerWithMock(t)
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("connection reset"))
	mock.ExpectPing()

	err := m.WithConn(context.Background(), func(context.Context, dbx.DBTX) error {
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	m, mock, db := newManagerWithMock(t)
	defer db.Close()

	mock.ExpectPing()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO comments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := m.WithTx(context.Background(), func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO comments (post_id, user_id, comment) VALUES (1, 2, 'x')")
		return err
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	m, mock, db := newManagerWithMock(t)
	defer db.Close()

	boom := errors.New("boom")

	mock.ExpectPing()
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := m.WithTx(context.Background(), func(ctx context.Context, tx dbx.DBTX) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryFactories(t *testing.T) {
	m, _, db := newManagerWithMock(t)
	defer db.Close()

	assert.NotNil(t, m.Users(db))
	assert.NotNil(t, m.Posts(db))
	assert.NotNil(t, m.Comments(db))
	assert.NotNil(t, m.Sessions(db))
}

func TestRunMigrations_UsesEmbeddedFS(t *testing.T) {
	m, _, db := newManagerWithMock(t)
	defer db.Close()

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	called := false
	gooseUpContext = func(ctx context.Context, handle *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		called = true
		assert.Same(t, db, handle)
		assert.Equal(t, ".", dir)
		return nil
	}

	require.NoError(t, m.RunMigrations(context.Background()))
	assert.True(t, called)
}
