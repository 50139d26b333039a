package sessions

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/picshare/readpath/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)INSERT\s+INTO\s+sessions\s*\(token,\s*user_id,\s*expires_at\)`).
		WithArgs("tok-1", int64(7), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), "tok-1", 7, time.Hour); err != nil {
		t.Fatalf("Create error: %v", err)
	}
}

func TestGetByToken_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	expires := time.Now().Add(time.Hour)

	mock.ExpectQuery(`(?s)SELECT token, user_id, expires_at, created_at FROM sessions\s+WHERE token = \$1 AND expires_at > now\(\)`).
		WithArgs("tok-1").
		WillReturnRows(sqlmock.NewRows([]string{"token", "user_id", "expires_at", "created_at"}).
			AddRow("tok-1", 7, expires, time.Now()))

	got, err := repo.GetByToken(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("GetByToken error: %v", err)
	}
	if got.UserID != 7 {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestGetByToken_ExpiredLooksLikeUnknown(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	// the expiry predicate is in the query, so an expired row scans as no rows
	mock.ExpectQuery(`SELECT token, user_id, expires_at, created_at FROM sessions`).
		WithArgs("stale").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByToken(context.Background(), "stale")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM sessions WHERE token = \$1`).
		WithArgs("tok-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "tok-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}
