package server

import (
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/go-posts-auth/internal/errors"
	"github.com/jrsteele09/go-posts-auth/users"
	"github.com/rs/zerolog/hlog"
)

type roleRequest struct {
	Role string `json:"role"`
}

// ListUsersHandler pages through every user (admin only)
func (s *Server) ListUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit, err := pagination(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		list, err := s.directory.List(r.Context(), offset, limit)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if list.Users == nil {
			list.Users = []*users.User{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// UpdateUserRoleHandler is the only way a role changes after creation.
// Tokens already issued keep the old role until they expire.
func (s *Server) UpdateUserRoleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := requireID(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		var req roleRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		role, err := users.ParseRole(req.Role)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: %v", apperrors.ErrInvalidRequest, err))
			return
		}

		user, err := s.directory.SetRole(r.Context(), id, role)
		if err != nil {
			s.writeResourceError(w, r, err, "User")
			return
		}
		hlog.FromRequest(r).Info().Str("external_id", id).Str("role", string(role)).Msg("role changed")
		writeJSON(w, http.StatusOK, user)
	}
}

// DeleteUserHandler removes a user and all of their posts (admin only)
func (s *Server) DeleteUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := requireID(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if _, err := s.directory.DeleteByExternalID(r.Context(), id); err != nil {
			s.writeResourceError(w, r, err, "User")
			return
		}
		s.writeMessage(w, http.StatusOK, MsgUserDeleted)
	}
}
