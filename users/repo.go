package users

import "context"

// Repo is the persistence contract for users. Implementations return
// errors.ErrNotFound for unknown ids.
type Repo interface {
	GetByExternalID(ctx context.Context, externalID string) (*User, error)

	// UpsertByExternalID creates the user with defaultRole or refreshes the profile
	// of an existing one, in a single atomic operation. Role is never modified.
	UpsertByExternalID(ctx context.Context, externalID string, profile Profile, defaultRole RoleType) (*User, error)

	UpdateProfile(ctx context.Context, externalID string, update ProfileUpdate) (*User, error)

	SetRole(ctx context.Context, externalID string, role RoleType) (*User, error)

	// EnsureRole creates an empty-profile user with role, or sets role on an existing one
	EnsureRole(ctx context.Context, externalID string, role RoleType) (*User, error)

	// DeleteWithPosts removes the user and every post it authored atomically,
	// returning the deleted user and the number of posts removed.
	DeleteWithPosts(ctx context.Context, externalID string) (*User, int, error)

	ListUsers(ctx context.Context, offset, limit int) (UsersListResponse, error)
}
