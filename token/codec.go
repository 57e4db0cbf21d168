package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-posts-auth/internal/errors"
)

// DefaultExpiry is the lifetime of a session token.
const DefaultExpiry = 7 * 24 * time.Hour

// Codec issues and verifies session tokens. It holds no mutable state and is
// safe for concurrent use.
type Codec struct {
	signer  Signer
	expiry  time.Duration
	nowFunc func() time.Time
}

type CodecOption func(*Codec)

func WithExpiry(expiry time.Duration) CodecOption {
	return func(c *Codec) {
		if expiry > 0 {
			c.expiry = expiry
		}
	}
}

// WithNowFunc sets the clock (primarily for testing)
func WithNowFunc(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowFunc = now
	}
}

func NewCodec(signer Signer, options ...CodecOption) (*Codec, error) {
	if signer == nil {
		return nil, errors.New("[NewCodec] signer is required")
	}
	c := &Codec{
		signer:  signer,
		expiry:  DefaultExpiry,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// NewHMACCodec builds a Codec signing with HS256 over secret.
func NewHMACCodec(secret string, options ...CodecOption) (*Codec, error) {
	signer, err := NewHMACSigner(secret)
	if err != nil {
		return nil, err
	}
	return NewCodec(signer, options...)
}

// Expiry returns the lifetime given to issued tokens
func (c *Codec) Expiry() time.Duration {
	return c.expiry
}

// Issue signs subject, email and role with iat = now and exp = now + expiry.
func (c *Codec) Issue(claims Claims) (string, error) {
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("[Codec Issue] subject is required")
	}

	// JWT numeric dates have second precision
	now := c.nowFunc().Truncate(time.Second)
	wire := sessionClaims{
		Email: claims.Email,
		Role:  claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.expiry)),
		},
	}

	signed, err := c.signer.Sign(wire)
	if err != nil {
		return "", fmt.Errorf("[Codec Issue] %w", err)
	}
	return signed, nil
}

// Verify checks signature, structure and expiry. Every failure is reported as
// ErrInvalidToken; the underlying reason is formatted into the message for
// server-side logs but is not part of the error chain.
func (c *Codec) Verify(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, fmt.Errorf("%w: empty token", apperrors.ErrInvalidToken)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.signer.GetSigningMethod().Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.nowFunc),
	)

	parsed, err := parser.ParseWithClaims(rawToken, &sessionClaims{}, c.signer.GetVerificationKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	wire, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: unexpected claims", apperrors.ErrInvalidToken)
	}
	if wire.Subject == "" || wire.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing sub or iat", apperrors.ErrInvalidToken)
	}

	return &Claims{
		Subject:   wire.Subject,
		Email:     wire.Email,
		Role:      wire.Role,
		IssuedAt:  wire.IssuedAt.Time,
		ExpiresAt: wire.ExpiresAt.Time,
	}, nil
}
