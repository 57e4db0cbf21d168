package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/go-posts-auth/internal/errors"
	"github.com/jrsteele09/go-posts-auth/users"
)

const userColumns = `external_id, display_name, email, picture_url, role, created_at, updated_at`

type UserRepo struct {
	db      *sql.DB
	nowTime func() time.Time
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db, nowTime: time.Now}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*users.User, error) {
	u := &users.User{}
	var role string
	if err := row.Scan(&u.ExternalID, &u.DisplayName, &u.Email, &u.PictureURL, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = users.RoleType(role)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

// storeError maps driver errors onto the store taxonomy
func storeError(op, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("[%s] %q: %w", op, id, apperrors.ErrNotFound)
	}
	return fmt.Errorf("[%s] %w: %w", op, apperrors.ErrStore, err)
}

func (r *UserRepo) GetByExternalID(ctx context.Context, externalID string) (*users.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE external_id = $1`,
		externalID,
	))
	if err != nil {
		return nil, storeError("UserRepo GetByExternalID", externalID, err)
	}
	return u, nil
}

// UpsertByExternalID relies on the primary key conflict so concurrent first
// sign-ins converge on one row. The update clause never names role.
func (r *UserRepo) UpsertByExternalID(ctx context.Context, externalID string, profile users.Profile, defaultRole users.RoleType) (*users.User, error) {
	now := r.nowTime().UTC()
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`INSERT INTO users (external_id, display_name, email, picture_url, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 ON CONFLICT (external_id) DO UPDATE SET
		   display_name = EXCLUDED.display_name,
		   email = EXCLUDED.email,
		   picture_url = EXCLUDED.picture_url,
		   updated_at = EXCLUDED.updated_at
		 RETURNING `+userColumns,
		externalID, profile.DisplayName, profile.Email, profile.PictureURL, string(defaultRole), now,
	))
	if err != nil {
		return nil, storeError("UserRepo UpsertByExternalID", externalID, err)
	}
	return u, nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, externalID string, update users.ProfileUpdate) (*users.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`UPDATE users SET
		   display_name = COALESCE($2, display_name),
		   picture_url = COALESCE($3, picture_url),
		   updated_at = $4
		 WHERE external_id = $1
		 RETURNING `+userColumns,
		externalID, update.DisplayName, update.PictureURL, r.nowTime().UTC(),
	))
	if err != nil {
		return nil, storeError("UserRepo UpdateProfile", externalID, err)
	}
	return u, nil
}

func (r *UserRepo) SetRole(ctx context.Context, externalID string, role users.RoleType) (*users.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`UPDATE users SET role = $2, updated_at = $3
		 WHERE external_id = $1
		 RETURNING `+userColumns,
		externalID, string(role), r.nowTime().UTC(),
	))
	if err != nil {
		return nil, storeError("UserRepo SetRole", externalID, err)
	}
	return u, nil
}

func (r *UserRepo) EnsureRole(ctx context.Context, externalID string, role users.RoleType) (*users.User, error) {
	now := r.nowTime().UTC()
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`INSERT INTO users (external_id, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)
		 ON CONFLICT (external_id) DO UPDATE SET
		   role = EXCLUDED.role,
		   updated_at = EXCLUDED.updated_at
		 RETURNING `+userColumns,
		externalID, string(role), now,
	))
	if err != nil {
		return nil, storeError("UserRepo EnsureRole", externalID, err)
	}
	return u, nil
}

// DeleteWithPosts removes the posts and then the user in one transaction.
func (r *UserRepo) DeleteWithPosts(ctx context.Context, externalID string) (*users.User, int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, storeError("UserRepo DeleteWithPosts", externalID, err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE author_ref = $1`, externalID)
	if err != nil {
		return nil, 0, storeError("UserRepo DeleteWithPosts", externalID, err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return nil, 0, storeError("UserRepo DeleteWithPosts", externalID, err)
	}

	u, err := scanUser(tx.QueryRowContext(ctx,
		`DELETE FROM users WHERE external_id = $1 RETURNING `+userColumns,
		externalID,
	))
	if err != nil {
		return nil, 0, storeError("UserRepo DeleteWithPosts", externalID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, storeError("UserRepo DeleteWithPosts", externalID, err)
	}
	return u, int(removed), nil
}

func (r *UserRepo) ListUsers(ctx context.Context, offset, limit int) (users.UsersListResponse, error) {
	resp := users.UsersListResponse{Users: []*users.User{}, Offset: offset, Limit: limit}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&resp.Total); err != nil {
		return resp, storeError("UserRepo ListUsers", "", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY external_id
		 OFFSET $1 LIMIT $2`,
		offset, sqlLimit(limit),
	)
	if err != nil {
		return resp, storeError("UserRepo ListUsers", "", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return resp, storeError("UserRepo ListUsers", "", err)
		}
		resp.Users = append(resp.Users, u)
	}
	if err := rows.Err(); err != nil {
		return resp, storeError("UserRepo ListUsers", "", err)
	}
	return resp, nil
}

// sqlLimit turns a zero limit into LIMIT ALL
func sqlLimit(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

var _ users.Repo = (*UserRepo)(nil)
