package memstore_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-posts-auth/internal/errors"
	"github.com/jrsteele09/go-posts-auth/internal/utils"
	"github.com/jrsteele09/go-posts-auth/posts"
	"github.com/jrsteele09/go-posts-auth/storage/memstore"
	"github.com/jrsteele09/go-posts-auth/users"
	"github.com/stretchr/testify/require"
)

func newPost(id, author string, created time.Time) *posts.Post {
	return &posts.Post{
		ID:        id,
		Title:     "title " + id,
		Content:   "content " + id,
		AuthorRef: author,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestStore_UpsertCreatesThenRefreshes(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()

	u, err := s.UpsertByExternalID(ctx, "g1", users.Profile{DisplayName: "Alice", Email: "a@b.com"}, users.RoleUser)
	require.NoError(t, err)
	require.Equal(t, users.RoleUser, u.Role)
	require.Equal(t, "Alice", u.DisplayName)

	_, err = s.SetRole(ctx, "g1", users.RoleAdmin)
	require.NoError(t, err)

	u, err = s.UpsertByExternalID(ctx, "g1", users.Profile{DisplayName: "Alice B", Email: "alice@b.com", PictureURL: "http://pic"}, users.RoleUser)
	require.NoError(t, err)
	require.Equal(t, users.RoleAdmin, u.Role)
	require.Equal(t, "Alice B", u.DisplayName)
	require.Equal(t, "alice@b.com", u.Email)
	require.Equal(t, "http://pic", u.PictureURL)
}

func TestStore_ConcurrentUpsertSingleRecord(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.UpsertByExternalID(ctx, "g-new", users.Profile{DisplayName: fmt.Sprintf("n%d", i), Email: "x@y.com"}, users.RoleUser)
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()

	list, err := s.ListUsers(ctx, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	_, err := s.UpsertByExternalID(ctx, "g1", users.Profile{DisplayName: "Alice"}, users.RoleUser)
	require.NoError(t, err)

	u, err := s.GetByExternalID(ctx, "g1")
	require.NoError(t, err)
	u.Role = users.RoleAdmin

	again, err := s.GetByExternalID(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, users.RoleUser, again.Role)
}

func TestStore_DeleteWithPosts(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	now := time.Now()

	_, err := s.UpsertByExternalID(ctx, "g1", users.Profile{DisplayName: "Alice"}, users.RoleUser)
	require.NoError(t, err)
	_, err = s.UpsertByExternalID(ctx, "g2", users.Profile{DisplayName: "Bob"}, users.RoleUser)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreatePost(ctx, newPost(fmt.Sprintf("p%d", i), "g1", now)))
	}
	require.NoError(t, s.CreatePost(ctx, newPost("other", "g2", now)))

	deleted, count, err := s.DeleteWithPosts(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, "g1", deleted.ExternalID)
	require.Equal(t, 3, count)

	_, err = s.GetByExternalID(ctx, "g1")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	remaining, err := s.ListPosts(ctx, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, remaining.Total)
	require.Equal(t, "other", remaining.Posts[0].ID)

	_, _, err = s.DeleteWithPosts(ctx, "g1")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_EnsureRole(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()

	u, err := s.EnsureRole(ctx, "boss", users.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, users.RoleAdmin, u.Role)
	require.Empty(t, u.Email)

	u, err = s.UpsertByExternalID(ctx, "boss", users.Profile{DisplayName: "Boss", Email: "boss@x.com"}, users.RoleUser)
	require.NoError(t, err)
	require.Equal(t, users.RoleAdmin, u.Role)
	require.Equal(t, "boss@x.com", u.Email)
}

func TestStore_Posts(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.CreatePost(ctx, newPost(fmt.Sprintf("p%d", i), "g1", base.Add(time.Duration(i)*time.Minute))))
	}
	require.ErrorIs(t, s.CreatePost(ctx, newPost("p0", "g1", base)), apperrors.ErrStore)

	page, err := s.ListPosts(ctx, 1, 2)
	require.NoError(t, err)
	require.Equal(t, 5, page.Total)
	require.Len(t, page.Posts, 2)
	require.Equal(t, "p3", page.Posts[0].ID)
	require.Equal(t, "p2", page.Posts[1].ID)

	beyond, err := s.ListPosts(ctx, 10, 2)
	require.NoError(t, err)
	require.Empty(t, beyond.Posts)

	updatedAt := base.Add(time.Hour)
	p, err := s.UpdatePost(ctx, "p1", posts.Update{Title: utils.Ptr("new title")}, updatedAt)
	require.NoError(t, err)
	require.Equal(t, "new title", p.Title)
	require.Equal(t, "content p1", p.Content)
	require.Equal(t, "g1", p.AuthorRef)
	require.Equal(t, updatedAt, p.UpdatedAt)

	_, err = s.UpdatePost(ctx, "missing", posts.Update{Title: utils.Ptr("x")}, updatedAt)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, s.DeletePost(ctx, "p1"))
	require.ErrorIs(t, s.DeletePost(ctx, "p1"), apperrors.ErrNotFound)
	_, err = s.GetPost(ctx, "p1")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	byAuthor, err := s.ListByAuthor(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, byAuthor, 4)
}

func TestStore_ListUsersOrderedByExternalID(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	for _, id := range []string{"g3", "g1", "g2"} {
		_, err := s.UpsertByExternalID(ctx, id, users.Profile{DisplayName: id}, users.RoleUser)
		require.NoError(t, err)
	}

	list, err := s.ListUsers(ctx, 0, 0)
	require.NoError(t, err)
	ids := make([]string, 0, len(list.Users))
	for _, u := range list.Users {
		ids = append(ids, u.ExternalID)
	}
	require.Equal(t, []string{"g1", "g2", "g3"}, ids)

	page, err := s.ListUsers(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, "g2", page.Users[0].ExternalID)
}
