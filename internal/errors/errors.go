package errors

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the token codec, the OAuth exchange, the guard and the stores.
var (
	// OAuth exchange errors
	ErrMissingCode         = errors.New("missing code")
	ErrNoIdentityAssertion = errors.New("no identity assertion in provider response")
	ErrIncompleteProfile   = errors.New("incomplete profile")
	ErrOAuthExchangeFailed = errors.New("oauth exchange failed")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")

	// Guard errors
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")

	// Store errors
	ErrNotFound = errors.New("not found")
	ErrStore    = errors.New("store error")

	// General errors
	ErrInvalidRequest = errors.New("invalid request")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
