package handlers

import (
	"errors"
	"mime"
	"net/http"

	"github.com/isdelr/taskapi/internal/auth"
	"github.com/isdelr/taskapi/internal/common"
	"github.com/isdelr/taskapi/internal/models"
	"github.com/isdelr/taskapi/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// LoginPayload defines the structure for JSON login requests.
type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload models.UserCreate
	if !decodeJSON(w, r, &payload) {
		return
	}

	user, err := h.service.CreateUser(r.Context(), payload)
	if err != nil {
		log.Warn().Err(err).Str("username", payload.Username).Msg("Failed to register user")
		writeError(w, r, err, userErrors)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Login exchanges a username and password for an access token. It accepts an
// OAuth2-style form body as well as JSON.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	payload, ok := readLoginPayload(w, r)
	if !ok {
		return
	}

	var issues []common.FieldIssue
	if payload.Username == "" {
		issues = append(issues, common.FieldIssue{Loc: []string{"body", "username"}, Msg: "Field required", Type: "missing"})
	}
	if payload.Password == "" {
		issues = append(issues, common.FieldIssue{Loc: []string{"body", "password"}, Msg: "Field required", Type: "missing"})
	}
	if len(issues) > 0 {
		WriteError(w, r, &common.ValidationError{Issues: issues})
		return
	}

	token, err := h.service.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("username", payload.Username).Msg("Failed authentication attempt")
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

func readLoginPayload(w http.ResponseWriter, r *http.Request) (LoginPayload, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			writeBadBody(w)
			return LoginPayload{}, false
		}
		return LoginPayload{Username: r.PostFormValue("username"), Password: r.PostFormValue("password")}, true
	default:
		var payload LoginPayload
		if !decodeJSON(w, r, &payload) {
			return LoginPayload{}, false
		}
		return payload, true
	}
}

// GetMe returns the authenticated user.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		WriteError(w, r, common.ErrNotAuthenticated)
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

// DeleteMe permanently deletes the authenticated user and their tasks.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		WriteError(w, r, common.ErrNotAuthenticated)
		return
	}

	if err := h.service.DeleteCurrentUser(r.Context(), identity); err != nil {
		log.Error().Err(err).Int64("user_id", identity.ID).Msg("Failed to delete user")
		writeError(w, r, err, userErrors)
		return
	}
	writeDetail(w, http.StatusOK, "User deleted!")
}
