package users

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

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "account_name", "passhash", "authority", "del_flg", "created_at"})
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*account_name,\s*passhash,\s*authority,\s*del_flg,\s*created_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`

	mock.ExpectQuery(q).
		WithArgs(int64(7)).
		WillReturnRows(userRows().AddRow(7, "alice", "hash", 0, 0, time.Now()))

	got, err := repo.GetByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.ID != 7 || got.AccountName != "alice" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM users WHERE id`).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestGetByAccountName_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM users WHERE account_name\s*=\s*\$1`).
		WithArgs("bob").
		WillReturnRows(userRows().AddRow(3, "bob", "hash", 0, 1, time.Now()))

	got, err := repo.GetByAccountName(context.Background(), "bob")
	if err != nil {
		t.Fatalf("GetByAccountName error: %v", err)
	}
	if got.ID != 3 || got.Active() {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByIDs_BuildsOneQuery(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM users WHERE id IN \(\$1,\$2,\$3\)`).
		WithArgs(int64(1), int64(2), int64(3)).
		WillReturnRows(userRows().
			AddRow(1, "a", "h", 0, 0, time.Now()).
			AddRow(3, "c", "h", 0, 0, time.Now()))

	got, err := repo.GetByIDs(context.Background(), []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("GetByIDs error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 users, got %d", len(got))
	}
	if got[1].AccountName != "a" || got[3].AccountName != "c" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetByIDs_EmptyInputSkipsQuery(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	got, err := repo.GetByIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetByIDs error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("want empty map, got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSetDeleted(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE users SET del_flg\s*=\s*\$1 WHERE id\s*=\s*\$2`).
		WithArgs(1, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetDeleted(context.Background(), 5, true); err != nil {
		t.Fatalf("SetDeleted error: %v", err)
	}
}

func TestSetDeleted_UnknownUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE users SET del_flg`).
		WithArgs(0, int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetDeleted(context.Background(), 404, false)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}
