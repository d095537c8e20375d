package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/taskapi/internal/common"
	"github.com/isdelr/taskapi/internal/models"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// errorMessages holds the resource-specific details for 404 and 403 responses.
type errorMessages struct {
	notFound  string
	forbidden string
}

var (
	defaultErrors    = errorMessages{notFound: "Not found", forbidden: "Forbidden"}
	taskErrors       = errorMessages{notFound: "Task not found!", forbidden: "Not authorized to update this task!"}
	taskDeleteErrors = errorMessages{notFound: "Task not found!", forbidden: "Not authorized to delete this task!"}
	userErrors       = errorMessages{notFound: "User not found!", forbidden: "Not authorized to delete this user!"}
)

type detailResponse struct {
	Detail any `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeDetail(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

// WriteError renders err as a {"detail": ...} response. It is also used by the
// authentication middleware.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, err, defaultErrors)
}

func writeError(w http.ResponseWriter, r *http.Request, err error, msgs errorMessages) {
	var verr *common.ValidationError
	var perr *common.PaginationError

	switch {
	case errors.As(err, &verr):
		writeDetail(w, http.StatusUnprocessableEntity, verr.Issues)
	case errors.As(err, &perr):
		writeDetail(w, http.StatusBadRequest, perr.Reason)
	case errors.Is(err, common.ErrAuthFailed):
		unauthorized(w, "Incorrect username or password")
	case errors.Is(err, common.ErrNotAuthenticated):
		unauthorized(w, "Not authenticated")
	case errors.Is(err, common.ErrTokenExpired):
		unauthorized(w, "Token has expired!")
	case errors.Is(err, common.ErrTokenInvalid):
		unauthorized(w, "Couldn't validate credentials!")
	case errors.Is(err, common.ErrForbidden):
		writeDetail(w, http.StatusForbidden, msgs.forbidden)
	case errors.Is(err, common.ErrNotFound):
		writeDetail(w, http.StatusNotFound, msgs.notFound)
	case errors.Is(err, common.ErrDuplicateUsername):
		writeDetail(w, http.StatusBadRequest, "Username already registered!")
	case errors.Is(err, common.ErrTaskAlreadyCompleted):
		writeDetail(w, http.StatusBadRequest, "Task is already completed!")
	default:
		hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, detail)
}

func writeBadBody(w http.ResponseWriter) {
	writeDetail(w, http.StatusBadRequest, "Invalid request body")
}

// decodeJSON decodes the request body into v. It reports false after writing
// a 400 response when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeBadBody(w)
		return false
	}
	return true
}

// pathID parses the named URL parameter as a positive integer id.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, common.NewValidationError([]string{"path", name}, "Input should be a valid integer", "int_parsing")
	}
	return id, nil
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, common.NewValidationError([]string{"query", name}, "Input should be a valid integer", "int_parsing")
	}
	return n, nil
}

// pagination reads skip and limit, applying the listing defaults. Range checks
// are left to the service.
func pagination(r *http.Request) (models.Pagination, error) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		return models.Pagination{}, err
	}
	limit, err := queryInt(r, "limit", models.DefaultLimit)
	if err != nil {
		return models.Pagination{}, err
	}
	return models.Pagination{Skip: skip, Limit: limit}, nil
}
