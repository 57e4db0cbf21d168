package users

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/jrsteele09/go-posts-auth/internal/errors"
	"github.com/jrsteele09/go-posts-auth/posts"
	"github.com/rs/zerolog/log"
)

// PostLister is the slice of the post store the directory needs
type PostLister interface {
	ListByAuthor(ctx context.Context, authorRef string) ([]*posts.Post, error)
}

// Directory is the user lookup and reconciliation surface used by the OAuth
// exchange and the HTTP handlers.
type Directory struct {
	users Repo
	posts PostLister
}

func NewDirectory(users Repo, posts PostLister) (*Directory, error) {
	if users == nil {
		return nil, fmt.Errorf("[NewDirectory] users repo is required")
	}
	if posts == nil {
		return nil, fmt.Errorf("[NewDirectory] posts repo is required")
	}
	return &Directory{users: users, posts: posts}, nil
}

func (d *Directory) FindByExternalID(ctx context.Context, externalID string) (*User, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, fmt.Errorf("[Directory FindByExternalID] %w: empty id", apperrors.ErrNotFound)
	}
	return d.users.GetByExternalID(ctx, externalID)
}

func (d *Directory) UpsertByExternalID(ctx context.Context, externalID string, profile Profile, defaultRole RoleType) (*User, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, fmt.Errorf("[Directory UpsertByExternalID] %w: external id is required", apperrors.ErrInvalidRequest)
	}
	if !defaultRole.Valid() {
		return nil, fmt.Errorf("[Directory UpsertByExternalID] %w: invalid default role %q", apperrors.ErrInvalidRequest, defaultRole)
	}
	return d.users.UpsertByExternalID(ctx, externalID, profile, defaultRole)
}

// DeleteByExternalID removes the user together with all of its posts.
func (d *Directory) DeleteByExternalID(ctx context.Context, externalID string) (*User, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, fmt.Errorf("[Directory DeleteByExternalID] %w: empty id", apperrors.ErrNotFound)
	}
	deleted, postCount, err := d.users.DeleteWithPosts(ctx, externalID)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("component", "directory").
		Str("external_id", externalID).
		Int("posts_deleted", postCount).
		Msg("user deleted")
	return deleted, nil
}

func (d *Directory) ListPostsByAuthor(ctx context.Context, externalID string) ([]*posts.Post, error) {
	return d.posts.ListByAuthor(ctx, externalID)
}

func (d *Directory) List(ctx context.Context, offset, limit int) (UsersListResponse, error) {
	return d.users.ListUsers(ctx, offset, limit)
}

func (d *Directory) UpdateProfile(ctx context.Context, externalID string, update ProfileUpdate) (*User, error) {
	if err := update.Validate(); err != nil {
		return nil, fmt.Errorf("[Directory UpdateProfile] %w: %v", apperrors.ErrInvalidRequest, err)
	}
	if update.DisplayName != nil {
		trimmed := strings.TrimSpace(*update.DisplayName)
		update.DisplayName = &trimmed
	}
	return d.users.UpdateProfile(ctx, externalID, update)
}

// SetRole is the privileged path for changing a role. Tokens already issued
// keep their old role until they expire.
func (d *Directory) SetRole(ctx context.Context, externalID string, role RoleType) (*User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("[Directory SetRole] %w: invalid role %q", apperrors.ErrInvalidRequest, role)
	}
	return d.users.SetRole(ctx, externalID, role)
}

// EnsureAdmin guarantees externalID holds the admin role, creating a placeholder
// record when the person has not signed in yet. Their first sign-in fills the profile.
func (d *Directory) EnsureAdmin(ctx context.Context, externalID string) (*User, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, fmt.Errorf("[Directory EnsureAdmin] %w: external id is required", apperrors.ErrInvalidRequest)
	}
	return d.users.EnsureRole(ctx, externalID, RoleAdmin)
}
