package auth

import (
	"context"

	"github.com/jrsteele09/go-posts-auth/token"
)

type claimsContextKey struct{}

// WithClaims attaches verified session claims to ctx
func WithClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// ClaimsFromContext returns the claims attached by WithClaims, if any
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*token.Claims)
	return claims, ok && claims != nil
}
