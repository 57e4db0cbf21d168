// Package memstore is an in-memory implementation of users.Repo and posts.Repo.
// A single lock covers both collections so cascading deletes are atomic.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-posts-auth/internal/errors"
	"github.com/jrsteele09/go-posts-auth/internal/utils"
	"github.com/jrsteele09/go-posts-auth/posts"
	"github.com/jrsteele09/go-posts-auth/users"
)

var (
	_ users.Repo = (*Store)(nil)
	_ posts.Repo = (*Store)(nil)
)

type Store struct {
	users   map[string]*users.User // external id to user
	posts   map[string]*posts.Post // post id to post
	lock    sync.RWMutex
	nowTime func() time.Time
}

type Option func(*Store)

// WithNowTime sets the clock used for user timestamps (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

func New(options ...Option) *Store {
	s := &Store{
		users:   make(map[string]*users.User),
		posts:   make(map[string]*posts.Post),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *Store) GetByExternalID(_ context.Context, externalID string) (*users.User, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	u, ok := s.users[externalID]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", externalID, apperrors.ErrNotFound)
	}
	return copyUser(u), nil
}

func (s *Store) UpsertByExternalID(_ context.Context, externalID string, profile users.Profile, defaultRole users.RoleType) (*users.User, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.nowTime().UTC()
	u, ok := s.users[externalID]
	if !ok {
		u = &users.User{
			ExternalID: externalID,
			Role:       defaultRole,
			CreatedAt:  now,
		}
		s.users[externalID] = u
	}
	u.DisplayName = profile.DisplayName
	u.Email = profile.Email
	u.PictureURL = profile.PictureURL
	u.UpdatedAt = now
	return copyUser(u), nil
}

func (s *Store) UpdateProfile(_ context.Context, externalID string, update users.ProfileUpdate) (*users.User, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	u, ok := s.users[externalID]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", externalID, apperrors.ErrNotFound)
	}
	if update.DisplayName != nil {
		u.DisplayName = utils.Value(update.DisplayName)
	}
	if update.PictureURL != nil {
		u.PictureURL = utils.Value(update.PictureURL)
	}
	u.UpdatedAt = s.nowTime().UTC()
	return copyUser(u), nil
}

func (s *Store) SetRole(_ context.Context, externalID string, role users.RoleType) (*users.User, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	u, ok := s.users[externalID]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", externalID, apperrors.ErrNotFound)
	}
	u.Role = role
	u.UpdatedAt = s.nowTime().UTC()
	return copyUser(u), nil
}

func (s *Store) EnsureRole(_ context.Context, externalID string, role users.RoleType) (*users.User, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.nowTime().UTC()
	u, ok := s.users[externalID]
	if !ok {
		u = &users.User{ExternalID: externalID, CreatedAt: now}
		s.users[externalID] = u
	}
	u.Role = role
	u.UpdatedAt = now
	return copyUser(u), nil
}

func (s *Store) DeleteWithPosts(_ context.Context, externalID string) (*users.User, int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	u, ok := s.users[externalID]
	if !ok {
		return nil, 0, fmt.Errorf("user %q: %w", externalID, apperrors.ErrNotFound)
	}

	removed := 0
	for id, p := range s.posts {
		if p.AuthorRef == externalID {
			delete(s.posts, id)
			removed++
		}
	}
	delete(s.users, externalID)
	return u, removed, nil
}

func (s *Store) ListUsers(_ context.Context, offset, limit int) (users.UsersListResponse, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	userList := make([]*users.User, 0, len(s.users))
	for _, u := range s.users {
		userList = append(userList, copyUser(u))
	}
	sort.Slice(userList, func(i, j int) bool {
		return userList[i].ExternalID < userList[j].ExternalID
	})

	start, end := pageBounds(len(userList), offset, limit)
	return users.UsersListResponse{
		Users:  userList[start:end],
		Total:  len(userList),
		Offset: offset,
		Limit:  limit,
	}, nil
}

func (s *Store) CreatePost(_ context.Context, post *posts.Post) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, exists := s.posts[post.ID]; exists {
		return fmt.Errorf("post %q already exists: %w", post.ID, apperrors.ErrStore)
	}
	s.posts[post.ID] = copyPost(post)
	return nil
}

func (s *Store) GetPost(_ context.Context, id string) (*posts.Post, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %q: %w", id, apperrors.ErrNotFound)
	}
	return copyPost(p), nil
}

func (s *Store) ListPosts(_ context.Context, offset, limit int) (posts.ListResponse, error) {
	return s.listPosts(offset, limit, func(*posts.Post) bool { return true }), nil
}

func (s *Store) ListByAuthor(_ context.Context, authorRef string) ([]*posts.Post, error) {
	resp := s.listPosts(0, 0, func(p *posts.Post) bool { return p.AuthorRef == authorRef })
	return resp.Posts, nil
}

func (s *Store) UpdatePost(_ context.Context, id string, update posts.Update, updatedAt time.Time) (*posts.Post, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %q: %w", id, apperrors.ErrNotFound)
	}
	if update.Title != nil {
		p.Title = utils.Value(update.Title)
	}
	if update.Content != nil {
		p.Content = utils.Value(update.Content)
	}
	p.UpdatedAt = updatedAt
	return copyPost(p), nil
}

func (s *Store) DeletePost(_ context.Context, id string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.posts[id]; !ok {
		return fmt.Errorf("post %q: %w", id, apperrors.ErrNotFound)
	}
	delete(s.posts, id)
	return nil
}

// listPosts returns matching posts newest first. A zero limit returns everything after offset.
func (s *Store) listPosts(offset, limit int, match func(*posts.Post) bool) posts.ListResponse {
	s.lock.RLock()
	defer s.lock.RUnlock()

	postList := make([]*posts.Post, 0)
	for _, p := range s.posts {
		if match(p) {
			postList = append(postList, copyPost(p))
		}
	}
	sort.Slice(postList, func(i, j int) bool {
		if postList[i].CreatedAt.Equal(postList[j].CreatedAt) {
			return postList[i].ID < postList[j].ID
		}
		return postList[i].CreatedAt.After(postList[j].CreatedAt)
	})

	start, end := pageBounds(len(postList), offset, limit)
	return posts.ListResponse{
		Posts:  postList[start:end],
		Total:  len(postList),
		Offset: offset,
		Limit:  limit,
	}
}

func pageBounds(total, offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return offset, end
}

func copyUser(u *users.User) *users.User {
	c := *u
	return &c
}

func copyPost(p *posts.Post) *posts.Post {
	c := *p
	return &c
}
