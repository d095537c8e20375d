package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/isdelr/taskapi/internal/common"
)

// Claims defines the JWT claims structure. The subject carries the username.
type Claims struct {
	UserID int64 `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// AccessToken is the response body of a successful login.
type AccessToken struct {
	Token     string    `json:"access_token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenConfig is the immutable signing configuration of a TokenService.
type TokenConfig struct {
	Secret    []byte
	Algorithm string
	TTL       time.Duration
}

// TokenService issues and validates signed, time-limited access tokens.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

var (
	errEmptySecret      = errors.New("token secret must not be empty")
	errNonPositiveTTL   = errors.New("token ttl must be positive")
	errMissingSubject   = errors.New("token has no subject")
	supportedAlgorithms = map[string]jwt.SigningMethod{
		jwt.SigningMethodHS256.Alg(): jwt.SigningMethodHS256,
		jwt.SigningMethodHS384.Alg(): jwt.SigningMethodHS384,
		jwt.SigningMethodHS512.Alg(): jwt.SigningMethodHS512,
	}
)

// NewTokenService validates cfg and builds a TokenService using the wall clock.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	return NewTokenServiceWithClock(cfg, time.Now)
}

// NewTokenServiceWithClock is NewTokenService with an explicit clock.
func NewTokenServiceWithClock(cfg TokenConfig, now func() time.Time) (*TokenService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errEmptySecret
	}
	if cfg.TTL <= 0 {
		return nil, errNonPositiveTTL
	}
	method, ok := supportedAlgorithms[cfg.Algorithm]
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	return &TokenService{secret: secret, method: method, ttl: cfg.TTL, now: now}, nil
}

// Issue creates a signed token for subject. A ttl of zero or less uses the
// configured lifetime; userID is omitted from the token when zero.
func (s *TokenService) Issue(subject string, userID int64, ttl time.Duration) (AccessToken, error) {
	if subject == "" {
		return AccessToken{}, errMissingSubject
	}
	if ttl <= 0 {
		ttl = s.ttl
	}
	issuedAt := s.now()
	expiresAt := issuedAt.Add(ttl)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return AccessToken{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return AccessToken{Token: signed, TokenType: "bearer", ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Validate parses a token and checks its signature and expiry. It returns
// common.ErrTokenExpired only for a correctly signed token past its expiry;
// every other failure is common.ErrTokenInvalid.
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(token *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		// jwt/v5 verifies the signature before the claims, so an expiry error
		// implies an authentic token.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", common.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, common.ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: %v", common.ErrTokenInvalid, errMissingSubject)
	}
	return claims, nil
}

// TTL returns the configured default lifetime.
func (s *TokenService) TTL() time.Duration { return s.ttl }
