package posts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-posts-auth/internal/errors"
)

// Service applies validation, ids and timestamps on top of a Repo.
// Authorization is the caller's concern.
type Service struct {
	repo    Repo
	nowTime func() time.Time
}

type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

func NewService(repo Repo, options ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("[posts NewService] repo is required")
	}
	s := &Service{repo: repo, nowTime: time.Now}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

func (s *Service) Create(ctx context.Context, authorRef string, in NewPost) (*Post, error) {
	if strings.TrimSpace(authorRef) == "" {
		return nil, fmt.Errorf("[posts Create] %w: author is required", apperrors.ErrInvalidRequest)
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("[posts Create] %w: %v", apperrors.ErrInvalidRequest, err)
	}

	now := s.nowTime().UTC()
	post := &Post{
		ID:        uuid.New().String(),
		Title:     strings.TrimSpace(in.Title),
		Content:   in.Content,
		AuthorRef: authorRef,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("[posts Create] %w", err)
	}
	return post, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Post, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("[posts Get] %w: empty id", apperrors.ErrNotFound)
	}
	return s.repo.GetPost(ctx, id)
}

func (s *Service) List(ctx context.Context, offset, limit int) (ListResponse, error) {
	return s.repo.ListPosts(ctx, offset, limit)
}

func (s *Service) ListByAuthor(ctx context.Context, authorRef string) ([]*Post, error) {
	return s.repo.ListByAuthor(ctx, authorRef)
}

func (s *Service) Update(ctx context.Context, id string, update Update) (*Post, error) {
	if err := update.Validate(); err != nil {
		return nil, fmt.Errorf("[posts Update] %w: %v", apperrors.ErrInvalidRequest, err)
	}
	if update.Title != nil {
		trimmed := strings.TrimSpace(*update.Title)
		update.Title = &trimmed
	}
	return s.repo.UpdatePost(ctx, id, update, s.nowTime().UTC())
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.DeletePost(ctx, id)
}
