package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/go-posts-auth/internal/errors"
	"github.com/jrsteele09/go-posts-auth/posts"
)

const postColumns = `id, title, content, author_ref, created_at, updated_at`

type PostRepo struct {
	db *sql.DB
}

func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{db: db}
}

func scanPost(row rowScanner) (*posts.Post, error) {
	p := &posts.Post{}
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorRef, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func (r *PostRepo) CreatePost(ctx context.Context, post *posts.Post) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (`+postColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		post.ID, post.Title, post.Content, post.AuthorRef, post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("[PostRepo CreatePost] %w: %w", apperrors.ErrStore, err)
	}
	return nil
}

func (r *PostRepo) GetPost(ctx context.Context, id string) (*posts.Post, error) {
	p, err := scanPost(r.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id::text = $1`,
		id,
	))
	if err != nil {
		return nil, storeError("PostRepo GetPost", id, err)
	}
	return p, nil
}

func (r *PostRepo) ListPosts(ctx context.Context, offset, limit int) (posts.ListResponse, error) {
	resp := posts.ListResponse{Posts: []*posts.Post{}, Offset: offset, Limit: limit}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&resp.Total); err != nil {
		return resp, storeError("PostRepo ListPosts", "", err)
	}

	list, err := r.query(ctx, "PostRepo ListPosts",
		`SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id
		 OFFSET $1 LIMIT $2`,
		offset, sqlLimit(limit),
	)
	if err != nil {
		return resp, err
	}
	resp.Posts = list
	return resp, nil
}

func (r *PostRepo) ListByAuthor(ctx context.Context, authorRef string) ([]*posts.Post, error) {
	return r.query(ctx, "PostRepo ListByAuthor",
		`SELECT `+postColumns+` FROM posts WHERE author_ref = $1 ORDER BY created_at DESC, id`,
		authorRef,
	)
}

func (r *PostRepo) UpdatePost(ctx context.Context, id string, update posts.Update, updatedAt time.Time) (*posts.Post, error) {
	p, err := scanPost(r.db.QueryRowContext(ctx,
		`UPDATE posts SET
		   title = COALESCE($2, title),
		   content = COALESCE($3, content),
		   updated_at = $4
		 WHERE id::text = $1
		 RETURNING `+postColumns,
		id, update.Title, update.Content, updatedAt,
	))
	if err != nil {
		return nil, storeError("PostRepo UpdatePost", id, err)
	}
	return p, nil
}

func (r *PostRepo) DeletePost(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id::text = $1`, id)
	if err != nil {
		return storeError("PostRepo DeletePost", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return storeError("PostRepo DeletePost", id, err)
	}
	if n == 0 {
		return storeError("PostRepo DeletePost", id, sql.ErrNoRows)
	}
	return nil
}

func (r *PostRepo) query(ctx context.Context, op string, query string, args ...any) ([]*posts.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError(op, "", err)
	}
	defer rows.Close()

	list := []*posts.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, storeError(op, "", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(op, "", err)
	}
	return list, nil
}

var _ posts.Repo = (*PostRepo)(nil)
