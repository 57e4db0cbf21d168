package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-posts-auth/internal/errors"
	"github.com/jrsteele09/go-posts-auth/internal/metrics"
	"github.com/jrsteele09/go-posts-auth/token"
	"github.com/jrsteele09/go-posts-auth/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const DefaultProviderTimeout = 10 * time.Second

// UserReconciler is the atomic create-or-refresh primitive of the user directory
type UserReconciler interface {
	UpsertByExternalID(ctx context.Context, externalID string, profile users.Profile, defaultRole users.RoleType) (*users.User, error)
}

// TokenIssuer signs session tokens
type TokenIssuer interface {
	Issue(claims token.Claims) (string, error)
}

// ExchangeResult is a completed sign-in
type ExchangeResult struct {
	Token string
	User  *users.User
}

// Exchanger runs the authorization code sign-in: code exchange, ID token
// verification, user reconciliation and session token issuance. The upsert is
// its only write and happens after every provider check has passed.
type Exchanger struct {
	provider IdentityProvider
	users    UserReconciler
	tokens   TokenIssuer
	timeout  time.Duration
	metrics  metrics.Recorder
	logger   zerolog.Logger
}

type ExchangerOption func(*Exchanger)

// WithProviderTimeout bounds the provider calls of a single exchange
func WithProviderTimeout(timeout time.Duration) ExchangerOption {
	return func(e *Exchanger) {
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

func WithMetrics(recorder metrics.Recorder) ExchangerOption {
	return func(e *Exchanger) {
		if recorder != nil {
			e.metrics = recorder
		}
	}
}

func NewExchanger(provider IdentityProvider, userDirectory UserReconciler, tokens TokenIssuer, options ...ExchangerOption) (*Exchanger, error) {
	if provider == nil {
		return nil, fmt.Errorf("[NewExchanger] identity provider is required")
	}
	if userDirectory == nil {
		return nil, fmt.Errorf("[NewExchanger] user directory is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("[NewExchanger] token issuer is required")
	}

	e := &Exchanger{
		provider: provider,
		users:    userDirectory,
		tokens:   tokens,
		timeout:  DefaultProviderTimeout,
		metrics:  metrics.Nop{},
		logger:   log.With().Str("component", "oauth_exchange").Logger(),
	}
	for _, opt := range options {
		opt(e)
	}
	return e, nil
}

// AuthCodeURL is where the client is sent to start sign-in
func (e *Exchanger) AuthCodeURL() string {
	return e.provider.AuthCodeURL()
}

// Exchange completes a sign-in for code. Client mistakes come back as
// ErrMissingCode or ErrIncompleteProfile; everything else is ErrOAuthExchangeFailed.
func (e *Exchanger) Exchange(ctx context.Context, code string) (*ExchangeResult, error) {
	if strings.TrimSpace(code) == "" {
		e.metrics.RecordExchange(metrics.OutcomeMissingCode)
		return nil, fmt.Errorf("[Exchanger Exchange] %w", apperrors.ErrMissingCode)
	}

	identity, err := e.verifiedIdentity(ctx, code)
	if err != nil {
		e.metrics.RecordExchange(metrics.OutcomeFailed)
		e.logger.Warn().Err(err).Msg("provider exchange failed")
		return nil, fmt.Errorf("[Exchanger Exchange] %w: %w", apperrors.ErrOAuthExchangeFailed, err)
	}

	if identity.Subject == "" || identity.Email == "" || identity.Name == "" {
		e.metrics.RecordExchange(metrics.OutcomeIncompleteProfile)
		return nil, fmt.Errorf("[Exchanger Exchange] %w: sub, email and name are required", apperrors.ErrIncompleteProfile)
	}

	user, err := e.users.UpsertByExternalID(ctx, identity.Subject, users.Profile{
		DisplayName: identity.Name,
		Email:       identity.Email,
		PictureURL:  identity.Picture,
	}, users.RoleUser)
	if err != nil {
		e.metrics.RecordExchange(metrics.OutcomeFailed)
		e.logger.Error().Err(err).Str("external_id", identity.Subject).Msg("user reconciliation failed")
		return nil, fmt.Errorf("[Exchanger Exchange] %w: %w", apperrors.ErrOAuthExchangeFailed, err)
	}

	sessionToken, err := e.tokens.Issue(token.Claims{
		Subject: user.ExternalID,
		Email:   user.Email,
		Role:    string(user.Role),
	})
	if err != nil {
		e.metrics.RecordExchange(metrics.OutcomeFailed)
		e.logger.Error().Err(err).Str("external_id", user.ExternalID).Msg("session token issuance failed")
		return nil, fmt.Errorf("[Exchanger Exchange] %w: %w", apperrors.ErrOAuthExchangeFailed, err)
	}

	e.metrics.RecordExchange(metrics.OutcomeSuccess)
	e.metrics.RecordTokenIssued()
	e.logger.Info().Str("external_id", user.ExternalID).Str("role", string(user.Role)).Msg("user signed in")
	return &ExchangeResult{Token: sessionToken, User: user}, nil
}

// verifiedIdentity runs both provider round trips under one deadline
func (e *Exchanger) verifiedIdentity(ctx context.Context, code string) (*Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	rawIDToken, err := e.provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return e.provider.VerifyAssertion(ctx, rawIDToken)
}
