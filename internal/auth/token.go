package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/coursehub-api/internal/models"
)

// TokenTypeRefresh marks refresh tokens; access tokens carry no type claim.
const TokenTypeRefresh = "refresh"

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload for both access and refresh tokens. Subject holds
// the username.
type Claims struct {
	Role models.UserRole `json:"role"`
	Type string          `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// IsRefresh reports whether the claims belong to a refresh token.
func (c *Claims) IsRefresh() bool {
	return c.Type == TokenTypeRefresh
}

// TokenConfig configures the issuer.
type TokenConfig struct {
	Secret        string
	Issuer        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// TokenIssuer signs and verifies HS256 tokens with a shared secret.
type TokenIssuer struct {
	config TokenConfig
	now    func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer.
func NewTokenIssuer(cfg TokenConfig) *TokenIssuer {
	if cfg.AccessExpiry <= 0 {
		cfg.AccessExpiry = 30 * time.Minute
	}
	if cfg.RefreshExpiry <= 0 {
		cfg.RefreshExpiry = 10 * 24 * time.Hour
	}
	return &TokenIssuer{config: cfg, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (i *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	i.now = now
	return i
}

// AccessExpiry returns the configured access token lifetime.
func (i *TokenIssuer) AccessExpiry() time.Duration {
	return i.config.AccessExpiry
}

// IssueAccess signs a short-lived access token for user.
func (i *TokenIssuer) IssueAccess(user *models.User) (string, time.Time, error) {
	return i.sign(user, "", "", i.config.AccessExpiry)
}

// IssueRefresh signs a refresh token for user. The caller persists the ledger row.
func (i *TokenIssuer) IssueRefresh(user *models.User) (string, time.Time, error) {
	return i.sign(user, TokenTypeRefresh, uuid.NewString(), i.config.RefreshExpiry)
}

// Parse verifies signature, algorithm and expiry and returns the claims.
func (i *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(i.config.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (i *TokenIssuer) sign(user *models.User, tokenType, id string, ttl time.Duration) (string, time.Time, error) {
	issuedAt := i.now().UTC()
	expiresAt := issuedAt.Add(ttl)
	claims := &Claims{
		Role: user.Role,
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.config.Issuer,
			Subject:   user.Username,
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}
