package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/coursehub-api/internal/auth"
	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
	appErrors "github.com/noah-isme/coursehub-api/pkg/errors"
)

type authFixture struct {
	svc     *AuthService
	users   *memUsers
	ledger  *memLedger
	tokens  *auth.TokenIssuer
	metrics *MetricsService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newMemUsers()
	ledger := newMemLedger()
	tokens := auth.NewTokenIssuer(auth.TokenConfig{
		Secret:        "test-secret",
		Issuer:        "coursehub",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
	})
	metrics := NewMetricsService()
	svc := NewAuthService(users, ledger, tokens, auth.NewPasswordHasher(bcrypt.MinCost), nil, metrics, nil, AuthConfig{EnforceLedgerExpiry: true})
	return &authFixture{svc: svc, users: users, ledger: ledger, tokens: tokens, metrics: metrics}
}

func (f *authFixture) register(t *testing.T, username, password string) *models.User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), dto.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: password,
	})
	require.NoError(t, err)
	return user
}

func TestAuthServiceRegisterCreatesStudent(t *testing.T) {
	f := newAuthFixture(t)

	user := f.register(t, "alice", "s3cret")

	assert.NotZero(t, user.ID)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
}

func TestAuthServiceRegisterConflict(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "s3cret")

	_, err := f.svc.Register(context.Background(), dto.RegisterRequest{Username: "alice", Email: "other@example.com", Password: "x"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	_, err = f.svc.Register(context.Background(), dto.RegisterRequest{Username: "bob", Email: "alice@example.com", Password: "x"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Register(context.Background(), dto.RegisterRequest{Username: "al", Email: "not-an-email", Password: "x"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAuthServiceLogin(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "alice", "s3cret")

	pair, err := f.svc.Login(context.Background(), dto.LoginRequest{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)

	assert.Equal(t, models.TokenTypeBearer, pair.TokenType)
	assert.Equal(t, int64(900), pair.ExpiresIn)
	assert.Equal(t, 1, f.ledger.count())

	claims, err := f.tokens.Parse(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.False(t, claims.IsRefresh())

	stored, err := f.ledger.FindByToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.UserID)
	assert.Equal(t, models.RoleStudent, stored.UserRole)

	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.tokensIssued.WithLabelValues("access")))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.tokensIssued.WithLabelValues(auth.TokenTypeRefresh)))
}

func TestAuthServiceLoginInvalidCredentials(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "s3cret")

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), dto.LoginRequest{Username: "ghost", Password: "s3cret"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	assert.Zero(t, f.ledger.count())
}

func TestAuthServiceRefreshRotatesOnce(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "s3cret")
	pair, err := f.svc.Login(context.Background(), dto.LoginRequest{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)

	next, err := f.svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)
	assert.Equal(t, 1, f.ledger.count())

	_, err = f.svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.ErrorIs(t, err, appErrors.ErrTokenNotFound)

	_, err = f.svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: next.RefreshToken})
	assert.NoError(t, err)

	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.refreshRotations.WithLabelValues(RotationSucceeded)))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.refreshRotations.WithLabelValues(RotationReplayed)))
}

func TestAuthServiceRefreshRejectsGarbage(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: "not-a-jwt"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)

	_, err = f.svc.Refresh(context.Background(), dto.RefreshRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAuthServiceRefreshAccessTokenNotInLedger(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "s3cret")
	pair, err := f.svc.Login(context.Background(), dto.LoginRequest{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)

	_, err = f.svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: pair.AccessToken})
	assert.ErrorIs(t, err, appErrors.ErrTokenNotFound)
}

func TestAuthServiceRefreshExpiredLedgerRow(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "s3cret")
	pair, err := f.svc.Login(context.Background(), dto.LoginRequest{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)

	f.svc.now = func() time.Time { return time.Now().Add(48 * time.Hour) }

	_, err = f.svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
	assert.Equal(t, 1, f.ledger.count())

	f.svc.config.EnforceLedgerExpiry = false
	_, err = f.svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.NoError(t, err)
}

func TestAuthServiceRefreshUserGone(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "alice", "s3cret")
	pair, err := f.svc.Login(context.Background(), dto.LoginRequest{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)
	require.NoError(t, f.users.Delete(context.Background(), user.ID))

	_, err = f.svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.ErrorIs(t, err, appErrors.ErrUserNotFound)
}

func TestAuthServiceResolve(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "alice", "s3cret")
	pair, err := f.svc.Login(context.Background(), dto.LoginRequest{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)

	resolved, err := f.svc.Resolve(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	_, err = f.svc.Resolve(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)

	_, err = f.svc.Resolve(context.Background(), "garbage")
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
}

func TestAuthServiceResolveDeletedUser(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "alice", "s3cret")
	access, _, err := f.tokens.IssueAccess(user)
	require.NoError(t, err)
	require.NoError(t, f.users.Delete(context.Background(), user.ID))

	_, err = f.svc.Resolve(context.Background(), access)
	assert.ErrorIs(t, err, appErrors.ErrUserNotFound)
}

func TestAuthServiceLogout(t *testing.T) {
	f := newAuthFixture(t)
	alice := f.register(t, "alice", "s3cret")
	bob := f.register(t, "bob", "hunter2")
	pair, err := f.svc.Login(context.Background(), dto.LoginRequest{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)

	err = f.svc.Logout(context.Background(), bob, dto.RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Equal(t, 1, f.ledger.count())

	require.NoError(t, f.svc.Logout(context.Background(), alice, dto.RefreshRequest{RefreshToken: pair.RefreshToken}))
	assert.Zero(t, f.ledger.count())

	err = f.svc.Logout(context.Background(), alice, dto.RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.ErrorIs(t, err, appErrors.ErrTokenNotFound)
}

func TestAuthServiceChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "alice", "s3cret")
	for i := 0; i < 2; i++ {
		_, err := f.svc.Login(context.Background(), dto.LoginRequest{Username: "alice", Password: "s3cret"})
		require.NoError(t, err)
	}
	require.Equal(t, 2, f.ledger.count())

	err := f.svc.ChangePassword(context.Background(), user, dto.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "n3w"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	assert.Equal(t, 2, f.ledger.count())

	require.NoError(t, f.svc.ChangePassword(context.Background(), user, dto.ChangePasswordRequest{OldPassword: "s3cret", NewPassword: "n3w"}))
	assert.Zero(t, f.ledger.count())

	_, err = f.svc.Login(context.Background(), dto.LoginRequest{Username: "alice", Password: "s3cret"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	_, err = f.svc.Login(context.Background(), dto.LoginRequest{Username: "alice", Password: "n3w"})
	assert.NoError(t, err)
}

func TestAuthServiceChangePasswordRevokeFailure(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "alice", "s3cret")
	f.ledger.deleteErr = errBoom

	err := f.svc.ChangePassword(context.Background(), user, dto.ChangePasswordRequest{OldPassword: "s3cret", NewPassword: "n3w"})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestAuthServicePasswordOverBcryptLimitIsValidation(t *testing.T) {
	f := newAuthFixture(t)
	// 40 characters pass max=72 but take 80 bytes.
	long := strings.Repeat("é", 40)

	_, err := f.svc.Register(context.Background(), dto.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: long})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = f.users.FindByUsername(context.Background(), "alice")
	assert.Error(t, err)

	user := f.register(t, "bob", "s3cret")
	err = f.svc.ChangePassword(context.Background(), user, dto.ChangePasswordRequest{OldPassword: "s3cret", NewPassword: long})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.svc.Login(context.Background(), dto.LoginRequest{Username: "bob", Password: "s3cret"})
	assert.NoError(t, err)
}
