package auth

import (
	"fmt"

	apperrors "github.com/jrsteele09/go-posts-auth/internal/errors"
	"github.com/jrsteele09/go-posts-auth/token"
	"github.com/jrsteele09/go-posts-auth/users"
)

// Denial reasons. Both match errors.ErrForbidden.
var (
	ErrAdminRequired = fmt.Errorf("%w: admin access required", apperrors.ErrForbidden)
	ErrNotOwner      = fmt.Errorf("%w: not the owner", apperrors.ErrForbidden)
)

// RequireRole fails closed: nil claims are unauthenticated.
func RequireRole(claims *token.Claims, role users.RoleType) error {
	if claims == nil {
		return apperrors.ErrUnauthenticated
	}
	if users.RoleType(claims.Role) != role {
		if role == users.RoleAdmin {
			return ErrAdminRequired
		}
		return fmt.Errorf("%w: role %q required", apperrors.ErrForbidden, role)
	}
	return nil
}

// RequireOwnerOrAdmin allows admins and the subject that owns authorRef.
func RequireOwnerOrAdmin(claims *token.Claims, authorRef string) error {
	if claims == nil {
		return apperrors.ErrUnauthenticated
	}
	if users.RoleType(claims.Role) == users.RoleAdmin {
		return nil
	}
	if authorRef == "" || claims.Subject != authorRef {
		return ErrNotOwner
	}
	return nil
}
