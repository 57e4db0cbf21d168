package posts

import (
	"context"
	"time"
)

// Repo is the persistence contract for posts. Implementations return
// errors.ErrNotFound for unknown ids.
type Repo interface {
	CreatePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, id string) (*Post, error)
	ListPosts(ctx context.Context, offset, limit int) (ListResponse, error)
	ListByAuthor(ctx context.Context, authorRef string) ([]*Post, error)
	UpdatePost(ctx context.Context, id string, update Update, updatedAt time.Time) (*Post, error)
	DeletePost(ctx context.Context, id string) error
}
