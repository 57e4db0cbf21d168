package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-posts-auth/auth"
	apperrors "github.com/jrsteele09/go-posts-auth/internal/errors"
	"github.com/jrsteele09/go-posts-auth/internal/utils"
	"github.com/rs/zerolog/hlog"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	maxBodyBytes     = 1 << 20
)

type messageResponse struct {
	Message string `json:"message"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// statusFromError is the single mapping from the error taxonomy to HTTP.
// Order matters: the specific denials wrap ErrForbidden.
func statusFromError(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrMissingCode):
		return http.StatusBadRequest, MsgMissingCode
	case errors.Is(err, apperrors.ErrIncompleteProfile):
		return http.StatusBadRequest, MsgIncompleteProfile
	case errors.Is(err, apperrors.ErrOAuthExchangeFailed):
		return http.StatusInternalServerError, MsgExchangeFailed
	case errors.Is(err, apperrors.ErrInvalidToken):
		return http.StatusUnauthorized, MsgInvalidToken
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return http.StatusUnauthorized, MsgUnauthenticated
	case errors.Is(err, auth.ErrAdminRequired):
		return http.StatusForbidden, MsgAdminRequired
	case errors.Is(err, auth.ErrNotOwner):
		return http.StatusForbidden, MsgNotOwner
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, apperrors.ErrInvalidRequest):
		return http.StatusBadRequest, "Invalid request"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFromError(err)
	switch status {
	case http.StatusUnauthorized:
		s.metrics.RecordGuardDenial("unauthenticated")
	case http.StatusForbidden:
		s.metrics.RecordGuardDenial("forbidden")
	}

	logger := hlog.FromRequest(r)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Msg("request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}

	// Validation failures carry a client safe detail after the sentinel
	if status == http.StatusBadRequest && errors.Is(err, apperrors.ErrInvalidRequest) {
		if detail := validationDetail(err); detail != "" {
			message = message + ": " + detail
		}
	}
	s.writeMessage(w, status, message)
}

// writeResourceError names the missing resource on 404
func (s *Server) writeResourceError(w http.ResponseWriter, r *http.Request, err error, resource string) {
	if errors.Is(err, apperrors.ErrNotFound) {
		s.writeMessage(w, http.StatusNotFound, resource+" not found")
		return
	}
	s.writeError(w, r, err)
}

// validationDetail returns the text following "invalid request: "
func validationDetail(err error) string {
	msg := err.Error()
	marker := apperrors.ErrInvalidRequest.Error() + ": "
	idx := strings.LastIndex(msg, marker)
	if idx < 0 {
		return ""
	}
	return msg[idx+len(marker):]
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body", apperrors.ErrInvalidRequest)
	}
	return nil
}

// requireID reads the mandatory "id" query parameter
func requireID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		return "", fmt.Errorf("%w: missing id", apperrors.ErrInvalidRequest)
	}
	return id, nil
}

// pagination reads offset/limit and clamps them
func pagination(r *http.Request) (int, int, error) {
	query := r.URL.Query()
	offset, err := intParam(query.Get("offset"))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: offset must be a number", apperrors.ErrInvalidRequest)
	}
	limit, err := intParam(query.Get("limit"))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: limit must be a number", apperrors.ErrInvalidRequest)
	}
	offset, limit = utils.Page(offset, limit, defaultPageLimit, maxPageLimit)
	return offset, limit, nil
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
