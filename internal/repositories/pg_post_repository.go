package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var postSchema = []string{
	`CREATE TABLE IF NOT EXISTS posts (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		image       TEXT NOT NULL DEFAULT '',
		date        TIMESTAMPTZ NOT NULL,
		likes       TEXT[] NOT NULL DEFAULT '{}',
		comments    JSONB NOT NULL DEFAULT '[]',
		version     BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS posts_user_date_idx ON posts (user_id, date DESC, id DESC)`,
}

const postColumns = `id, user_id, description, image, date, likes, comments, version`

// PgPostRepository implements PostRepository on a pgx connection pool.
type PgPostRepository struct {
	pool *pgxpool.Pool
}

// NewPgPostRepository creates a new PgPostRepository
func NewPgPostRepository(pool *pgxpool.Pool) *PgPostRepository {
	return &PgPostRepository{pool: pool}
}

// EnsureSchema creates the posts table and its feed index.
func (r *PgPostRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range postSchema {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply posts schema: %w", err)
		}
	}
	return nil
}

func (r *PgPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if post.Likes == nil {
		post.Likes = []string{}
	}
	comments, err := json.Marshal(commentsOrEmpty(post.Comments))
	if err != nil {
		return fmt.Errorf("marshal comments: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO posts (`+postColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		post.ID, post.UserID, post.Description, post.Image, post.Date, post.Likes, comments, post.Version)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *PgPostRepository) GetPost(ctx context.Context, id string) (*models.Post, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

func (r *PgPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	comments, err := json.Marshal(commentsOrEmpty(post.Comments))
	if err != nil {
		return fmt.Errorf("marshal comments: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE posts
		SET description = $2, image = $3, likes = $4, comments = $5, version = version + 1
		WHERE id = $1 AND version = $6`,
		post.ID, post.Description, post.Image, post.Likes, comments, post.Version)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, post.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check post: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConflict
	}
	post.Version++
	return nil
}

func (r *PgPostRepository) GetPostsByUserID(ctx context.Context, userID, cursor string, limit int) (*models.Page[models.Post], error) {
	return r.queryPage(ctx, []string{userID}, cursor, limit)
}

// GetPostsByUserIDs runs one ANY($1) query ordered by date so rows from all
// authors come back already merged.
func (r *PgPostRepository) GetPostsByUserIDs(ctx context.Context, userIDs []string, cursor string, limit int) (*models.Page[models.Post], error) {
	return r.queryPage(ctx, userIDs, cursor, limit)
}

func (r *PgPostRepository) queryPage(ctx context.Context, userIDs []string, cursor string, limit int) (*models.Page[models.Post], error) {
	q := `SELECT ` + postColumns + ` FROM posts WHERE user_id = ANY($1)`
	args := []any{userIDs}
	if c, ok := pagination.DecodeTimeKey(cursor); ok {
		q += ` AND (date, id) < ($2, $3)`
		args = append(args, c.Date, c.ID)
	}
	q += fmt.Sprintf(` ORDER BY date DESC, id DESC LIMIT %d`, limit+1)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return NewPage(posts, limit, postCursor)
}

func scanPost(row pgx.Row) (*models.Post, error) {
	var (
		p        models.Post
		comments []byte
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.Description, &p.Image, &p.Date, &p.Likes, &comments, &p.Version); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(comments, &p.Comments); err != nil {
		return nil, fmt.Errorf("unmarshal comments: %w", err)
	}
	return &p, nil
}

func commentsOrEmpty(c []models.Comment) []models.Comment {
	if c == nil {
		return []models.Comment{}
	}
	return c
}
