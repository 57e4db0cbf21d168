package users_test

import (
	"context"
	"strings"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-posts-auth/internal/errors"
	"github.com/jrsteele09/go-posts-auth/internal/utils"
	"github.com/jrsteele09/go-posts-auth/posts"
	"github.com/jrsteele09/go-posts-auth/storage/memstore"
	"github.com/jrsteele09/go-posts-auth/users"
	"github.com/stretchr/testify/require"
)

func newDirectory(t *testing.T) (*users.Directory, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	dir, err := users.NewDirectory(store, store)
	require.NoError(t, err)
	return dir, store
}

func TestNewDirectory_RequiresRepos(t *testing.T) {
	store := memstore.New()
	_, err := users.NewDirectory(nil, store)
	require.Error(t, err)
	_, err = users.NewDirectory(store, nil)
	require.Error(t, err)
}

func TestDirectory_FindByExternalID(t *testing.T) {
	ctx := context.Background()
	dir, _ := newDirectory(t)

	_, err := dir.FindByExternalID(ctx, "")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = dir.FindByExternalID(ctx, "nobody")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = dir.UpsertByExternalID(ctx, "g1", users.Profile{DisplayName: "Alice", Email: "a@b.com"}, users.RoleUser)
	require.NoError(t, err)

	u, err := dir.FindByExternalID(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, "Alice", u.DisplayName)
	require.False(t, u.IsAdmin())
}

func TestDirectory_UpsertValidates(t *testing.T) {
	ctx := context.Background()
	dir, _ := newDirectory(t)

	_, err := dir.UpsertByExternalID(ctx, " ", users.Profile{}, users.RoleUser)
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	_, err = dir.UpsertByExternalID(ctx, "g1", users.Profile{}, users.RoleType("owner"))
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
}

func TestDirectory_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	dir, store := newDirectory(t)

	_, err := dir.UpsertByExternalID(ctx, "g1", users.Profile{DisplayName: "Alice"}, users.RoleUser)
	require.NoError(t, err)
	require.NoError(t, store.CreatePost(ctx, &posts.Post{ID: "p1", Title: "t", AuthorRef: "g1", CreatedAt: time.Now()}))

	authored, err := dir.ListPostsByAuthor(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, authored, 1)

	deleted, err := dir.DeleteByExternalID(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, "g1", deleted.ExternalID)

	authored, err = dir.ListPostsByAuthor(ctx, "g1")
	require.NoError(t, err)
	require.Empty(t, authored)

	_, err = dir.DeleteByExternalID(ctx, "g1")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDirectory_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	dir, _ := newDirectory(t)
	_, err := dir.UpsertByExternalID(ctx, "g1", users.Profile{DisplayName: "Alice"}, users.RoleUser)
	require.NoError(t, err)

	tests := []struct {
		name    string
		update  users.ProfileUpdate
		wantErr error
	}{
		{name: "empty update", update: users.ProfileUpdate{}, wantErr: apperrors.ErrInvalidRequest},
		{name: "blank name", update: users.ProfileUpdate{DisplayName: utils.Ptr("  ")}, wantErr: apperrors.ErrInvalidRequest},
		{name: "long name", update: users.ProfileUpdate{DisplayName: utils.Ptr(strings.Repeat("a", 101))}, wantErr: apperrors.ErrInvalidRequest},
		{name: "valid", update: users.ProfileUpdate{DisplayName: utils.Ptr("  Alice Smith ")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := dir.UpdateProfile(ctx, "g1", tt.update)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "Alice Smith", u.DisplayName)
		})
	}
}

func TestProfileUpdate_PictureURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "clear", url: ""},
		{name: "https", url: "https://lh3.googleusercontent.com/a/photo.jpg"},
		{name: "http", url: "http://example.com/me.png"},
		{name: "javascript", url: "javascript:alert(1)", wantErr: true},
		{name: "javascript upper case", url: "JavaScript:alert(1)", wantErr: true},
		{name: "data", url: "data:image/png;base64,AAAA", wantErr: true},
		{name: "relative", url: "/images/me.png", wantErr: true},
		{name: "no host", url: "https:///me.png", wantErr: true},
		{name: "malformed", url: "http://[::1", wantErr: true},
		{name: "too long", url: "https://example.com/" + strings.Repeat("a", 2048), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := users.ProfileUpdate{PictureURL: utils.Ptr(tt.url)}.Validate()
			if tt.wantErr {
				require.ErrorContains(t, err, "pictureUrl")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestDirectory_UpdatePictureURL(t *testing.T) {
	ctx := context.Background()
	dir, _ := newDirectory(t)
	_, err := dir.UpsertByExternalID(ctx, "g1", users.Profile{DisplayName: "Alice", PictureURL: "https://example.com/a.png"}, users.RoleUser)
	require.NoError(t, err)

	_, err = dir.UpdateProfile(ctx, "g1", users.ProfileUpdate{PictureURL: utils.Ptr("javascript:alert(1)")})
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	u, err := dir.FindByExternalID(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/a.png", u.PictureURL)
}

func TestDirectory_Roles(t *testing.T) {
	ctx := context.Background()
	dir, _ := newDirectory(t)

	_, err := dir.UpsertByExternalID(ctx, "g1", users.Profile{DisplayName: "Alice"}, users.RoleUser)
	require.NoError(t, err)

	_, err = dir.SetRole(ctx, "g1", users.RoleType("root"))
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	u, err := dir.SetRole(ctx, "g1", users.RoleAdmin)
	require.NoError(t, err)
	require.True(t, u.IsAdmin())

	_, err = dir.SetRole(ctx, "nobody", users.RoleAdmin)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	boot, err := dir.EnsureAdmin(ctx, "g-boot")
	require.NoError(t, err)
	require.True(t, boot.IsAdmin())

	list, err := dir.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)
}

func TestParseRole(t *testing.T) {
	r, err := users.ParseRole(" Admin ")
	require.NoError(t, err)
	require.Equal(t, users.RoleAdmin, r)

	_, err = users.ParseRole("superuser")
	require.Error(t, err)
}
