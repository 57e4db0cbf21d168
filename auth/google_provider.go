package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	apperrors "github.com/jrsteele09/go-posts-auth/internal/errors"
	"golang.org/x/oauth2"
)

// OAuthClientConfig is the slice of configuration the Google adapter reads
type OAuthClientConfig interface {
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetGoogleRedirectURL() string
	GetOIDCIssuer() string
}

// GoogleProvider implements IdentityProvider on top of OpenID Connect discovery
// for the configured issuer (Google by default).
type GoogleProvider struct {
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
}

var _ IdentityProvider = (*GoogleProvider)(nil)

// NewGoogleProvider performs discovery against the issuer, so ctx bounds a network call.
func NewGoogleProvider(ctx context.Context, cfg OAuthClientConfig) (*GoogleProvider, error) {
	provider, err := oidc.NewProvider(ctx, cfg.GetOIDCIssuer())
	if err != nil {
		return nil, fmt.Errorf("[NewGoogleProvider] failed to create OIDC provider: %w", err)
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: cfg.GetGoogleClientID(),
	})
	return NewGoogleProviderWithEndpoint(cfg, provider.Endpoint(), verifier), nil
}

// NewGoogleProviderWithEndpoint skips discovery and uses a known endpoint and verifier
func NewGoogleProviderWithEndpoint(cfg OAuthClientConfig, endpoint oauth2.Endpoint, verifier *oidc.IDTokenVerifier) *GoogleProvider {
	return &GoogleProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GetGoogleClientID(),
			ClientSecret: cfg.GetGoogleClientSecret(),
			Endpoint:     endpoint,
			RedirectURL:  cfg.GetGoogleRedirectURL(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
		verifier: verifier,
	}
}

func (g *GoogleProvider) AuthCodeURL() string {
	return g.oauth2Config.AuthCodeURL("",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

func (g *GoogleProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	oauth2Token, err := g.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("[GoogleProvider ExchangeCode] token exchange failed: %w", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", fmt.Errorf("[GoogleProvider ExchangeCode] %w", apperrors.ErrNoIdentityAssertion)
	}
	return rawIDToken, nil
}

func (g *GoogleProvider) VerifyAssertion(ctx context.Context, rawIDToken string) (*Identity, error) {
	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("[GoogleProvider VerifyAssertion] ID token verification failed: %w", err)
	}

	var claims struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("[GoogleProvider VerifyAssertion] failed to extract claims: %w", err)
	}

	return &Identity{
		Subject: idToken.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}
