package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/isdelr/taskapi/internal/auth"
	"github.com/isdelr/taskapi/internal/common"
	"github.com/isdelr/taskapi/internal/database"
	"github.com/isdelr/taskapi/internal/models"
	"github.com/isdelr/taskapi/internal/repositories/repomanager"
	"github.com/rs/zerolog/log"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	CreateUser(ctx context.Context, input models.UserCreate) (models.User, error)
	AuthenticateUser(ctx context.Context, username, password string) (models.User, error)
	Login(ctx context.Context, username, password string) (auth.AccessToken, error)
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	DeleteCurrentUser(ctx context.Context, identity models.User) error
}

// UserService provides business logic for user management.
type UserService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	hasher *auth.PasswordHasher
	tokens *auth.TokenService
	now    func() time.Time

	dummyOnce   sync.Once
	dummyDigest string
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, repos repomanager.RepositoryManager, hasher *auth.PasswordHasher, tokens *auth.TokenService) *UserService {
	return &UserService{
		db:     db,
		repos:  repos,
		hasher: hasher,
		tokens: tokens,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateUser registers a new account, hashing the password.
func (s *UserService) CreateUser(ctx context.Context, input models.UserCreate) (models.User, error) {
	if err := input.Validate(); err != nil {
		return models.User{}, err
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Username:     input.Username,
		PasswordHash: digest,
		CreatedAt:    s.now(),
	}
	err = database.WithTx(ctx, s.db, nil, func(ctx context.Context, tx database.DBTX) error {
		created, err := s.repos.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		user = created
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	return *user, nil
}

// AuthenticateUser verifies a user's credentials. An unknown username and a
// wrong password both yield common.ErrAuthFailed.
func (s *UserService) AuthenticateUser(ctx context.Context, username, password string) (models.User, error) {
	user, err := s.repos.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Pay for a comparison anyway so response time does not reveal
			// whether the username exists.
			s.hasher.Verify(password, s.dummyHash())
			return models.User{}, common.ErrAuthFailed
		}
		return models.User{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return models.User{}, common.ErrAuthFailed
	}
	return *user, nil
}

// Login authenticates the user and issues an access token for them.
func (s *UserService) Login(ctx context.Context, username, password string) (auth.AccessToken, error) {
	user, err := s.AuthenticateUser(ctx, username, password)
	if err != nil {
		return auth.AccessToken{}, err
	}
	token, err := s.tokens.Issue(user.Username, user.ID, 0)
	if err != nil {
		return auth.AccessToken{}, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	user, err := s.repos.Users(s.db).GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	return *user, nil
}

// GetUserByUsername retrieves a single user by their exact username.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	user, err := s.repos.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		return models.User{}, err
	}
	return *user, nil
}

// DeleteCurrentUser removes the authenticated user together with everything
// they own.
func (s *UserService) DeleteCurrentUser(ctx context.Context, identity models.User) error {
	err := database.WithTx(ctx, s.db, nil, func(ctx context.Context, tx database.DBTX) error {
		users := s.repos.Users(tx)
		user, err := users.GetByID(ctx, identity.ID)
		if err != nil {
			return err
		}
		if err := auth.AuthorizeOwner(user.ID, identity); err != nil {
			return err
		}
		return users.Delete(ctx, user.ID)
	})
	if err != nil {
		return err
	}

	log.Info().Int64("user_id", identity.ID).Msg("User deleted")
	return nil
}

func (s *UserService) dummyHash() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash("dummy-password-for-timing")
		if err != nil {
			log.Error().Err(err).Msg("Failed to prepare dummy password hash")
			return
		}
		s.dummyDigest = digest
	})
	return s.dummyDigest
}
