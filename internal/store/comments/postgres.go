package comments

import (
	"context"
	"fmt"

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

func (r *PostgresRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	query :=
		`INSERT INTO comments (post_id, user_id, comment)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		comment.PostID, comment.UserID, comment.Body).Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return comment, nil
}

func (r *PostgresRepository) CountsByPostIDs(ctx context.Context, postIDs []int64) (map[int64]int, error) {
	result := make(map[int64]int, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	ph, args := sqlutil.InInt64(postIDs, 1)
	query := fmt.Sprintf(
		`SELECT post_id, COUNT(*) FROM comments WHERE post_id IN (%s) GROUP BY post_id`, ph)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID int64
			count  int
		)
		if err := rows.Scan(&postID, &count); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result[postID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) RecentByPostIDs(ctx context.Context, postIDs []int64, n int) (map[int64][]models.CommentPreview, error) {
	result := make(map[int64][]models.CommentPreview, len(postIDs))
	if len(postIDs) == 0 || n <= 0 {
		return result, nil
	}

	ph, args := sqlutil.InInt64(postIDs, 1)
	// rank newest-first per post, keep the top n, then emit each preview list
	// oldest-first, which is the display order
	query := fmt.Sprintf(
		`SELECT post_id, id, user_id, account_name, body, created_at
		 FROM (
		     SELECT c.post_id, c.id, c.user_id, u.account_name, c.comment AS body, c.created_at,
		            ROW_NUMBER() OVER (PARTITION BY c.post_id ORDER BY c.created_at DESC, c.id DESC) AS rn
		     FROM comments c
		     JOIN users u ON u.id = c.user_id
		     WHERE c.post_id IN (%s)
		 ) ranked
		 WHERE rn <= $%d
		 ORDER BY post_id, created_at, id
		 `, ph, len(postIDs)+1)
	args = append(args, n)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID int64
			p      models.CommentPreview
		)
		if err := rows.Scan(&postID, &p.ID, &p.UserID, &p.AccountName, &p.Body, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result[postID] = append(result[postID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
