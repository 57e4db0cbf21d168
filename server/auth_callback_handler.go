package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-posts-auth/internal/config"
	"github.com/rs/zerolog/hlog"
)

type loginResponse struct {
	URL string `json:"url"`
}

// LoginHandler returns the provider consent URL for the client to navigate to
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, loginResponse{URL: s.exchanger.AuthCodeURL()})
	}
}

// OAuthCallbackHandler completes sign-in and hands the session token to the
// frontend according to the configured delivery mode.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		// Check for authorization errors (e.g. the user declined consent)
		if errorParam := query.Get("error"); errorParam != "" {
			hlog.FromRequest(r).Info().
				Str("error", errorParam).
				Str("error_description", query.Get("error_description")).
				Msg("provider returned an authorization error")
			s.writeMessage(w, http.StatusBadRequest, "Authorization was not granted")
			return
		}

		result, err := s.exchanger.Exchange(r.Context(), query.Get("code"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		frontendURL := s.config.GetFrontendURL()
		switch s.config.GetTokenDelivery() {
		case config.DeliveryFragment:
			redirect := frontendURL + "#token=" + url.QueryEscape(result.Token)
			http.Redirect(w, r, redirect, http.StatusFound)
		default:
			s.SetSessionCookie(w, result.Token, s.config.GetSessionTokenExpiry())
			http.Redirect(w, r, frontendURL, http.StatusFound)
		}
	}
}

// LogoutHandler clears the session cookie. Issued tokens stay valid until they expire.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.ClearSessionCookie(w)
		s.writeMessage(w, http.StatusOK, MsgLoggedOut)
	}
}
