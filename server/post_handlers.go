package server

import (
	"net/http"

	"github.com/jrsteele09/go-posts-auth/auth"
	apperrors "github.com/jrsteele09/go-posts-auth/internal/errors"
	"github.com/jrsteele09/go-posts-auth/posts"
)

func (s *Server) ListPostsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit, err := pagination(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		list, err := s.posts.List(r.Context(), offset, limit)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if list.Posts == nil {
			list.Posts = []*posts.Post{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) GetPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := requireID(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		post, err := s.posts.Get(r.Context(), id)
		if err != nil {
			s.writeResourceError(w, r, err, "Post")
			return
		}
		writeJSON(w, http.StatusOK, post)
	}
}

// CreatePostHandler always attributes the post to the caller
func (s *Server) CreatePostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			s.writeError(w, r, apperrors.ErrUnauthenticated)
			return
		}

		var in posts.NewPost
		if err := decodeJSON(w, r, &in); err != nil {
			s.writeError(w, r, err)
			return
		}

		post, err := s.posts.Create(r.Context(), claims.Subject, in)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, post)
	}
}

func (s *Server) UpdatePostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, ok := s.ownedPost(w, r)
		if !ok {
			return
		}

		var update posts.Update
		if err := decodeJSON(w, r, &update); err != nil {
			s.writeError(w, r, err)
			return
		}

		updated, err := s.posts.Update(r.Context(), post.ID, update)
		if err != nil {
			s.writeResourceError(w, r, err, "Post")
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) DeletePostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, ok := s.ownedPost(w, r)
		if !ok {
			return
		}
		if err := s.posts.Delete(r.Context(), post.ID); err != nil {
			s.writeResourceError(w, r, err, "Post")
			return
		}
		s.writeMessage(w, http.StatusOK, MsgPostDeleted)
	}
}

// ownedPost loads the post named by ?id and checks the caller may modify it.
// Fetch comes first, so a missing post is 404 and someone else's is 403.
func (s *Server) ownedPost(w http.ResponseWriter, r *http.Request) (*posts.Post, bool) {
	id, err := requireID(r)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	post, err := s.posts.Get(r.Context(), id)
	if err != nil {
		s.writeResourceError(w, r, err, "Post")
		return nil, false
	}
	claims, _ := auth.ClaimsFromContext(r.Context())
	if err := auth.RequireOwnerOrAdmin(claims, post.AuthorRef); err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return post, true
}
