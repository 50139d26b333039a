package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/picshare/readpath/internal/common"
	"github.com/picshare/readpath/internal/dbx"
	"github.com/picshare/readpath/internal/models"
	"github.com/picshare/readpath/internal/store/sqlutil"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// imgdata is deliberately absent: list and point reads must never drag image
// bytes along. The blob projection goes through GetImage.
const postColumns = `id, user_id, mime, body, created_at`

func scanPost(row interface{ Scan(...any) error }, p *models.Post) error {
	return row.Scan(&p.ID, &p.UserID, &p.Mime, &p.Body, &p.CreatedAt)
}

func (r *PostgresRepository) Create(ctx context.Context, post *models.Post, imgdata []byte) (*models.Post, error) {
	query :=
		`INSERT INTO posts (user_id, mime, imgdata, body)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		post.UserID, post.Mime, imgdata, post.Body).Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return post, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	post := &models.Post{}
	err := scanPost(r.db.QueryRowContext(ctx, query, id), post)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return post, nil
}

func (r *PostgresRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]models.Post, error) {
	result := make(map[int64]models.Post, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	ph, args := sqlutil.InInt64(ids, 1)
	query := fmt.Sprintf(`SELECT `+postColumns+` FROM posts WHERE id IN (%s)`, ph)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Post
		if err := scanPost(rows, &p); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) ListPage(ctx context.Context, createdBefore time.Time, idBefore int64, limit int) ([]models.Post, error) {
	var (
		rows *sql.Rows
		err  error
	)

	if createdBefore.IsZero() {
		query :=
			`SELECT p.id, p.user_id, p.mime, p.body, p.created_at
			 FROM posts p
			 JOIN users u ON u.id = p.user_id AND u.del_flg = 0
			 ORDER BY p.created_at DESC, p.id DESC
			 LIMIT $1
			 `
		rows, err = r.db.QueryContext(ctx, query, limit)
	} else {
		query :=
			`SELECT p.id, p.user_id, p.mime, p.body, p.created_at
			 FROM posts p
			 JOIN users u ON u.id = p.user_id AND u.del_flg = 0
			 WHERE (p.created_at, p.id) < ($1, $2)
			 ORDER BY p.created_at DESC, p.id DESC
			 LIMIT $3
			 `
		rows, err = r.db.QueryContext(ctx, query, createdBefore, idBefore, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	page := make([]models.Post, 0, limit)
	for rows.Next() {
		var p models.Post
		if err := scanPost(rows, &p); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		page = append(page, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return page, nil
}

func (r *PostgresRepository) GetImage(ctx context.Context, id int64) (string, []byte, error) {
	query := `SELECT mime, imgdata FROM posts WHERE id = $1`

	var (
		mime string
		data []byte
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&mime, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, common.ErrNotFound
		}
		return "", nil, fmt.Errorf("db error: %w", err)
	}

	return mime, data, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}

	return nil
}
