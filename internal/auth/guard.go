package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/isdelr/taskapi/internal/common"
	"github.com/isdelr/taskapi/internal/models"
	"github.com/rs/zerolog/log"
)

// IdentityStore looks up the user named by a token subject. It must return
// common.ErrNotFound when no such user exists.
type IdentityStore interface {
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

// ErrorWriter renders an authentication failure to the client.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Guard resolves bearer tokens to users and enforces resource ownership.
type Guard struct {
	tokens *TokenService
	users  IdentityStore
}

// NewGuard creates a Guard.
func NewGuard(tokens *TokenService, users IdentityStore) *Guard {
	return &Guard{tokens: tokens, users: users}
}

type contextKey string

// identityKey is the context key for the authenticated user.
const identityKey = contextKey("identity")

// WithIdentity returns a copy of ctx carrying user as the request identity.
func WithIdentity(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, identityKey, user)
}

// IdentityFromContext returns the identity stored by the middleware.
func IdentityFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(identityKey).(models.User)
	return user, ok
}

// ResolveIdentity validates token and loads the user it names. Expired tokens
// yield common.ErrTokenExpired; anything else that prevents a full resolution
// yields common.ErrTokenInvalid, except store failures which are returned as-is.
func (g *Guard) ResolveIdentity(ctx context.Context, token string) (models.User, error) {
	claims, err := g.tokens.Validate(token)
	if err != nil {
		return models.User{}, err
	}

	user, err := g.users.GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return models.User{}, fmt.Errorf("%w: subject %q not found", common.ErrTokenInvalid, claims.Subject)
		}
		return models.User{}, err
	}
	// A username freed by account deletion and registered again must not
	// inherit old tokens.
	if claims.UserID != 0 && claims.UserID != user.ID {
		return models.User{}, fmt.Errorf("%w: subject id mismatch", common.ErrTokenInvalid)
	}
	return user, nil
}

// AuthorizeOwner allows the request only when identity owns the resource.
func AuthorizeOwner(ownerID int64, identity models.User) error {
	if identity.ID == 0 || ownerID != identity.ID {
		return common.ErrForbidden
	}
	return nil
}

// Middleware protects routes with bearer authentication. On success the
// resolved user is available through IdentityFromContext.
func (g *Guard) Middleware(onError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				onError(w, r, common.ErrNotAuthenticated)
				return
			}

			user, err := g.ResolveIdentity(r.Context(), tokenStr)
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("Rejected bearer token")
				onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), user)))
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
