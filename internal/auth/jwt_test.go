package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/taskapi/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestTokenService(t *testing.T, secret string, clock *fakeClock) *TokenService {
	t.Helper()
	s, err := NewTokenServiceWithClock(TokenConfig{
		Secret:    []byte(secret),
		Algorithm: "HS256",
		TTL:       30 * time.Minute,
	}, clock.Now)
	require.NoError(t, err)
	return s
}

func TestNewTokenService_RejectsBadConfig(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		cfg  TokenConfig
	}{
		{"empty secret", TokenConfig{Algorithm: "HS256", TTL: time.Minute}},
		{"zero ttl", TokenConfig{Secret: []byte("k"), Algorithm: "HS256"}},
		{"asymmetric algorithm", TokenConfig{Secret: []byte("k"), Algorithm: "RS256", TTL: time.Minute}},
		{"none algorithm", TokenConfig{Secret: []byte("k"), Algorithm: "none", TTL: time.Minute}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTokenService(tt.cfg)
			require.Error(t, err)
		})
	}
}

func TestIssueAndValidate_Success(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	s := newTestTokenService(t, "super-secret", clock)

	tok, err := s.Issue("ann", 42, 0)
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok.TokenType)
	assert.True(t, clock.t.Add(30*time.Minute).Equal(tok.ExpiresAt))

	claims, err := s.Validate(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "ann", claims.Subject)
	assert.Equal(t, int64(42), claims.UserID)
	assert.NotEmpty(t, claims.ID)
}

func TestIssue_RequiresSubject(t *testing.T) {
	t.Parallel()
	s := newTestTokenService(t, "k", &fakeClock{t: time.Now()})
	_, err := s.Issue("", 1, 0)
	require.Error(t, err)
}

func TestValidate_ExpiryBoundary(t *testing.T) {
	t.Parallel()
	issuedAt := time.Unix(1_700_000_000, 0)
	clock := &fakeClock{t: issuedAt}
	s := newTestTokenService(t, "k", clock)

	ttl := 15 * time.Minute
	tok, err := s.Issue("ann", 1, ttl)
	require.NoError(t, err)

	clock.t = issuedAt.Add(ttl - time.Second)
	_, err = s.Validate(tok.Token)
	require.NoError(t, err, "token must be valid just before expiry")

	clock.t = issuedAt.Add(ttl + time.Second)
	_, err = s.Validate(tok.Token)
	require.ErrorIs(t, err, common.ErrTokenExpired)
	assert.NotErrorIs(t, err, common.ErrTokenInvalid)
}

func TestValidate_WrongSecretIsInvalidEvenWhenExpired(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	issuer := newTestTokenService(t, "right-secret", clock)
	verifier := newTestTokenService(t, "wrong-secret", clock)

	tok, err := issuer.Issue("ann", 1, time.Minute)
	require.NoError(t, err)

	_, err = verifier.Validate(tok.Token)
	require.ErrorIs(t, err, common.ErrTokenInvalid)

	clock.t = clock.t.Add(time.Hour)
	_, err = verifier.Validate(tok.Token)
	require.ErrorIs(t, err, common.ErrTokenInvalid)
	assert.NotErrorIs(t, err, common.ErrTokenExpired)
}

func TestValidate_TamperedPayload(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	s := newTestTokenService(t, "k", clock)

	tok, err := s.Issue("ann", 1, 0)
	require.NoError(t, err)

	other, err := s.Issue("mallory", 2, 0)
	require.NoError(t, err)

	// Splice mallory's payload onto ann's signature.
	a := strings.Split(tok.Token, ".")
	m := strings.Split(other.Token, ".")
	forged := a[0] + "." + m[1] + "." + a[2]

	_, err = s.Validate(forged)
	require.ErrorIs(t, err, common.ErrTokenInvalid)
}

func TestValidate_Malformed(t *testing.T) {
	t.Parallel()
	s := newTestTokenService(t, "k", &fakeClock{t: time.Now()})

	for _, raw := range []string{"", "invalid_token", "not.a.jwt", "a.b.c.d"} {
		_, err := s.Validate(raw)
		require.ErrorIs(t, err, common.ErrTokenInvalid, "input %q", raw)
	}
}

func TestValidate_MissingClaims(t *testing.T) {
	t.Parallel()
	now := time.Unix(1_700_000_000, 0)
	s := newTestTokenService(t, "k", &fakeClock{t: now})

	sign := func(c jwt.Claims) string {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("k"))
		require.NoError(t, err)
		return raw
	}

	noExp := sign(&Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "ann"}})
	_, err := s.Validate(noExp)
	require.ErrorIs(t, err, common.ErrTokenInvalid)

	noSub := sign(&Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}})
	_, err = s.Validate(noSub)
	require.ErrorIs(t, err, common.ErrTokenInvalid)
}

func TestValidate_RejectsOtherHMACAlgorithm(t *testing.T) {
	t.Parallel()
	now := time.Unix(1_700_000_000, 0)
	s := newTestTokenService(t, "k", &fakeClock{t: now})

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "ann", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = s.Validate(raw)
	require.ErrorIs(t, err, common.ErrTokenInvalid)
}
