package server

import (
	"net/http"

	"github.com/jrsteele09/go-posts-auth/auth"
	apperrors "github.com/jrsteele09/go-posts-auth/internal/errors"
	"github.com/jrsteele09/go-posts-auth/posts"
	"github.com/jrsteele09/go-posts-auth/users"
)

type userWithPostsResponse struct {
	User  *users.User   `json:"user"`
	Posts []*posts.Post `json:"posts"`
}

// CurrentUserHandler returns the caller's record and posts
func (s *Server) CurrentUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			s.writeError(w, r, apperrors.ErrUnauthenticated)
			return
		}
		s.writeUserWithPosts(w, r, claims.Subject)
	}
}

// GetUserHandler is open to the user themselves and to admins. The check runs
// before the lookup so a denial reveals nothing about existence.
func (s *Server) GetUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := requireID(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		claims, _ := auth.ClaimsFromContext(r.Context())
		if err := auth.RequireOwnerOrAdmin(claims, id); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeUserWithPosts(w, r, id)
	}
}

func (s *Server) UpdateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := requireID(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		claims, _ := auth.ClaimsFromContext(r.Context())
		if err := auth.RequireOwnerOrAdmin(claims, id); err != nil {
			s.writeError(w, r, err)
			return
		}

		var update users.ProfileUpdate
		if err := decodeJSON(w, r, &update); err != nil {
			s.writeError(w, r, err)
			return
		}

		user, err := s.directory.UpdateProfile(r.Context(), id, update)
		if err != nil {
			s.writeResourceError(w, r, err, "User")
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) writeUserWithPosts(w http.ResponseWriter, r *http.Request, externalID string) {
	user, err := s.directory.FindByExternalID(r.Context(), externalID)
	if err != nil {
		s.writeResourceError(w, r, err, "User")
		return
	}
	authored, err := s.directory.ListPostsByAuthor(r.Context(), externalID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if authored == nil {
		authored = []*posts.Post{}
	}
	writeJSON(w, http.StatusOK, userWithPostsResponse{User: user, Posts: authored})
}
