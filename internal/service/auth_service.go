package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-api/internal/auth"
	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/internal/repository"
	appErrors "github.com/noah-isme/coursehub-api/pkg/errors"
)

type authUserRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type refreshTokenLedger interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	Rotate(ctx context.Context, oldID int64, next *models.RefreshToken) error
	Delete(ctx context.Context, id int64) error
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	// EnforceLedgerExpiry rejects ledger rows past their recorded expiry even
	// when the token itself still verifies.
	EnforceLedgerExpiry bool
}

// AuthService provides registration, login, refresh rotation and session resolution.
type AuthService struct {
	users     authUserRepository
	ledger    refreshTokenLedger
	tokens    *auth.TokenIssuer
	passwords *auth.PasswordHasher
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	users authUserRepository,
	ledger refreshTokenLedger,
	tokens *auth.TokenIssuer,
	passwords *auth.PasswordHasher,
	validate *validator.Validate,
	metrics *MetricsService,
	logger *zap.Logger,
	config AuthConfig,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if passwords == nil {
		passwords = auth.NewPasswordHasher(0)
	}
	return &AuthService{
		users:     users,
		ledger:    ledger,
		tokens:    tokens,
		passwords: passwords,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		config:    config,
		now:       time.Now,
	}
}

// Register creates a student account.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid registration payload")
	}

	if err := s.ensureIdentityFree(ctx, req.Username, req.Email); err != nil {
		return nil, err
	}

	hash, err := hashPassword(s.passwords, req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleStudent,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "username or email already registered")
		}
		return nil, appErrors.Internal(err, "failed to create user")
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

func (s *AuthService) ensureIdentityFree(ctx context.Context, username, email string) error {
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return appErrors.Clone(appErrors.ErrConflict, "username already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Internal(err, "failed to check username")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Internal(err, "failed to check email")
	}
	return nil
}

// Login authenticates a user and returns a fresh token pair.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*models.TokenPair, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid login payload")
	}

	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Internal(err, "failed to fetch user")
	}

	if !s.passwords.Verify(req.Password, user.PasswordHash) {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	pair, refresh, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Create(ctx, refresh); err != nil {
		return nil, appErrors.Internal(err, "failed to persist refresh token")
	}

	return pair, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// consumed: its ledger row is deleted in the same transaction that records the
// replacement, so a token can be exchanged at most once.
func (s *AuthService) Refresh(ctx context.Context, req dto.RefreshRequest) (*models.TokenPair, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid refresh payload")
	}

	claims, err := s.tokens.Parse(req.RefreshToken)
	if err != nil || claims.Subject == "" {
		s.metrics.RecordRefreshRotation(RotationRejected)
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidToken.Code, appErrors.ErrInvalidToken.Status, "could not validate credentials")
	}

	stored, err := s.ledger.FindByToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordRefreshRotation(RotationReplayed)
			return nil, appErrors.Clone(appErrors.ErrTokenNotFound, "refresh token not found")
		}
		return nil, appErrors.Internal(err, "failed to fetch refresh token")
	}

	if s.config.EnforceLedgerExpiry && stored.Expired(s.now()) {
		s.metrics.RecordRefreshRotation(RotationRejected)
		return nil, appErrors.Clone(appErrors.ErrInvalidToken, "refresh token expired")
	}

	user, err := s.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordRefreshRotation(RotationRejected)
			return nil, appErrors.Clone(appErrors.ErrUserNotFound, "")
		}
		return nil, appErrors.Internal(err, "failed to load user")
	}

	pair, next, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.Rotate(ctx, stored.ID, next); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordRefreshRotation(RotationReplayed)
			return nil, appErrors.Clone(appErrors.ErrTokenNotFound, "refresh token not found")
		}
		return nil, appErrors.Internal(err, "failed to rotate refresh token")
	}

	s.metrics.RecordRefreshRotation(RotationSucceeded)
	return pair, nil
}

// Logout deletes the caller's ledger row for the given refresh token.
func (s *AuthService) Logout(ctx context.Context, user *models.User, req dto.RefreshRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "invalid logout payload")
	}

	stored, err := s.ledger.FindByToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrTokenNotFound, "refresh token not found")
		}
		return appErrors.Internal(err, "failed to load refresh token")
	}

	if stored.UserID != user.ID {
		return appErrors.Clone(appErrors.ErrForbidden, "token does not belong to user")
	}

	if err := s.ledger.Delete(ctx, stored.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrTokenNotFound, "refresh token not found")
		}
		return appErrors.Internal(err, "failed to revoke refresh token")
	}
	return nil
}

// ChangePassword replaces the caller's password and revokes all of their refresh tokens.
func (s *AuthService) ChangePassword(ctx context.Context, user *models.User, req dto.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "invalid change password payload")
	}

	current, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrUserNotFound, "")
		}
		return appErrors.Internal(err, "failed to load user")
	}

	if !s.passwords.Verify(req.OldPassword, current.PasswordHash) {
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "old password does not match")
	}

	hash, err := hashPassword(s.passwords, req.NewPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, current.ID, hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrUserNotFound, "")
		}
		return appErrors.Internal(err, "failed to update password")
	}

	revoked, err := s.ledger.DeleteByUser(ctx, current.ID)
	if err != nil {
		return appErrors.Internal(err, "failed to revoke refresh tokens")
	}
	s.logger.Info("password changed", zap.Int64("user_id", current.ID), zap.Int64("revoked_tokens", revoked))
	return nil
}

// Resolve maps a bearer access token to the stored user it names.
func (s *AuthService) Resolve(ctx context.Context, bearer string) (*models.User, error) {
	claims, err := s.tokens.Parse(bearer)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidToken.Code, appErrors.ErrInvalidToken.Status, "could not validate credentials")
	}
	if claims.Subject == "" || claims.IsRefresh() {
		return nil, appErrors.Clone(appErrors.ErrInvalidToken, "could not validate credentials")
	}

	user, err := s.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUserNotFound, "")
		}
		return nil, appErrors.Internal(err, "failed to load user")
	}
	return user, nil
}

func (s *AuthService) issuePair(user *models.User) (*models.TokenPair, *models.RefreshToken, error) {
	access, _, err := s.tokens.IssueAccess(user)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to create access token")
	}
	s.metrics.RecordTokenIssued("access")

	refresh, refreshExpiresAt, err := s.tokens.IssueRefresh(user)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to create refresh token")
	}
	s.metrics.RecordTokenIssued(auth.TokenTypeRefresh)

	row := &models.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		UserRole:  user.Role,
		CreatedAt: s.now().UTC(),
		ExpiresAt: refreshExpiresAt,
	}

	return &models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    models.TokenTypeBearer,
		ExpiresIn:    int64(s.tokens.AccessExpiry().Seconds()),
	}, row, nil
}
