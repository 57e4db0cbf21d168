package config

import "time"

type OAuthConfig interface {
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetGoogleRedirectURL() string
	GetOIDCIssuer() string
	GetFrontendURL() string
	GetOAuthTimeout() time.Duration
}

type OAuth struct {
	clientID     string
	clientSecret string
	redirectURL  string
	issuer       string
	frontendURL  string
	timeout      time.Duration
}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetGoogleClientID() string {
	return o.clientID
}

func (o OAuth) GetGoogleClientSecret() string {
	return o.clientSecret
}

// GetGoogleRedirectURL is the /oauth callback registered with the provider
func (o OAuth) GetGoogleRedirectURL() string {
	return o.redirectURL
}

func (o OAuth) GetOIDCIssuer() string {
	return o.issuer
}

// GetFrontendURL is where the browser lands after a successful exchange
func (o OAuth) GetFrontendURL() string {
	return o.frontendURL
}

// GetOAuthTimeout bounds every round trip to the identity provider
func (o OAuth) GetOAuthTimeout() time.Duration {
	if o.timeout <= 0 {
		return 10 * time.Second
	}
	return o.timeout
}
