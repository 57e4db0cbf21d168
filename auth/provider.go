// Package auth turns an identity provider authorization code into a local
// session token and holds the authorization policy applied to session claims.
package auth

import "context"

// Identity is the verified subset of an ID token the service relies on
type Identity struct {
	Subject string // Provider subject ("sub"), stable per person
	Email   string
	Name    string
	Picture string // Optional
}

// IdentityProvider is the capability the exchange needs from an OpenID Connect provider.
type IdentityProvider interface {
	// AuthCodeURL is the consent URL the client navigates to
	AuthCodeURL() string

	// ExchangeCode swaps an authorization code for the raw ID token. It returns
	// errors.ErrNoIdentityAssertion when the provider response carries none.
	ExchangeCode(ctx context.Context, code string) (string, error)

	// VerifyAssertion checks the ID token signature, issuer, audience and expiry
	// and extracts the identity claims.
	VerifyAssertion(ctx context.Context, rawIDToken string) (*Identity, error)
}
