package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/coursehub-api/internal/models"
)

func testIssuer(now time.Time) *TokenIssuer {
	return NewTokenIssuer(TokenConfig{
		Secret:        "test-secret",
		Issuer:        "coursehub",
		AccessExpiry:  30 * time.Minute,
		RefreshExpiry: 240 * time.Hour,
	}).WithClock(func() time.Time { return now })
}

func TestPasswordHashAndVerify(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	digest, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", digest)

	assert.True(t, h.Verify("pw1", digest))
	assert.False(t, h.Verify("pw2", digest))
	assert.False(t, h.Verify("pw1", "not-a-bcrypt-digest"))
	assert.False(t, h.Verify("pw1", ""))
}

func TestPasswordHashRejectsOverlongBytes(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("a", MaxPasswordBytes))
	assert.NoError(t, err)

	_, err = h.Hash(strings.Repeat("é", 37))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestPasswordHashIsSalted(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestIssueAccessClaims(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := testIssuer(now)

	token, exp, err := issuer.IssueAccess(&models.User{Username: "alice", Role: models.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, now.Add(30*time.Minute), exp)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.False(t, claims.IsRefresh())
}

func TestIssueRefreshClaimsAreUnique(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := testIssuer(now)
	user := &models.User{Username: "alice", Role: models.RoleAdmin}

	first, exp, err := issuer.IssueRefresh(user)
	require.NoError(t, err)
	assert.Equal(t, now.Add(240*time.Hour), exp)
	second, _, err := issuer.IssueRefresh(user)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	claims, err := issuer.Parse(first)
	require.NoError(t, err)
	assert.True(t, claims.IsRefresh())
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	token, _, err := testIssuer(now).IssueAccess(&models.User{Username: "alice", Role: models.RoleStudent})
	require.NoError(t, err)

	_, err = testIssuer(now.Add(31 * time.Minute)).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsTamperedAndForeignTokens(t *testing.T) {
	now := time.Now()
	issuer := testIssuer(now)
	token, _, err := issuer.IssueAccess(&models.User{Username: "alice", Role: models.RoleStudent})
	require.NoError(t, err)

	_, err = issuer.Parse(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewTokenIssuer(TokenConfig{Secret: "other-secret"})
	foreign, _, err := other.IssueAccess(&models.User{Username: "alice", Role: models.RoleAdmin})
	require.NoError(t, err)
	_, err = issuer.Parse(foreign)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "mallory",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = testIssuer(time.Now()).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRequiresExpiry(t *testing.T) {
	claims := &Claims{Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "mallory"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = testIssuer(time.Now()).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
