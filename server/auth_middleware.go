package server

import (
	"net/http"

	"github.com/jrsteele09/go-posts-auth/auth"
	"github.com/jrsteele09/go-posts-auth/internal/config"
	apperrors "github.com/jrsteele09/go-posts-auth/internal/errors"
	"github.com/jrsteele09/go-posts-auth/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Authenticate verifies the session token and attaches its claims to the
// request context. Bearer header first, then the session cookie in cookie mode.
func (s *Server) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawToken := bearerToken(r)
		if rawToken == "" && s.config.GetTokenDelivery() == config.DeliveryCookie {
			if cookie, err := r.Cookie(sessionCookieName); err == nil {
				rawToken = cookie.Value
			}
		}
		if rawToken == "" {
			s.writeError(w, r, apperrors.ErrUnauthenticated)
			return
		}

		claims, err := s.tokens.Verify(rawToken)
		if err != nil {
			// The reason stays in the logs; callers only learn the token is invalid
			hlog.FromRequest(r).Debug().Err(err).Msg("session token rejected")
			s.writeError(w, r, apperrors.ErrInvalidToken)
			return
		}

		hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("sub", claims.Subject)
		})
		next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	})
}

// RequireRole must follow Authenticate. Without claims it fails closed with 401.
func (s *Server) RequireRole(role users.RoleType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _ := auth.ClaimsFromContext(r.Context())
			if err := auth.RequireRole(claims, role); err != nil {
				s.writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
