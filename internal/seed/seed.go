// Package seed creates bootstrap accounts listed in a YAML file. Registration
// only ever yields students, so the first administrator comes from here.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/coursehub-api/internal/auth"
	"github.com/noah-isme/coursehub-api/internal/models"
)

// Account is one entry of the seed file.
type Account struct {
	Username string          `yaml:"username"`
	Email    string          `yaml:"email"`
	Password string          `yaml:"password"`
	Role     models.UserRole `yaml:"role"`
}

// File is the top-level seed document.
type File struct {
	Accounts []Account `yaml:"accounts"`
}

type accountStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// Load parses the seed file at path.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a seed document.
func Parse(raw []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for i, acc := range file.Accounts {
		if acc.Username == "" || acc.Email == "" || acc.Password == "" {
			return nil, fmt.Errorf("seed account %d: username, email and password are required", i+1)
		}
		if acc.Role == "" {
			file.Accounts[i].Role = models.RoleStudent
		} else if !acc.Role.Valid() {
			return nil, fmt.Errorf("seed account %s: unknown role %q", acc.Username, acc.Role)
		}
	}
	return &file, nil
}

// Apply creates every account whose username is not taken yet and returns
// how many were created. Existing accounts are left untouched.
func Apply(ctx context.Context, store accountStore, passwords *auth.PasswordHasher, file *File, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	created := 0
	for _, acc := range file.Accounts {
		_, err := store.FindByUsername(ctx, acc.Username)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return created, fmt.Errorf("lookup %s: %w", acc.Username, err)
		}

		hash, err := passwords.Hash(acc.Password)
		if err != nil {
			return created, fmt.Errorf("hash password for %s: %w", acc.Username, err)
		}
		user := &models.User{
			Username:     acc.Username,
			Email:        acc.Email,
			PasswordHash: hash,
			Role:         acc.Role,
		}
		if err := store.Create(ctx, user); err != nil {
			return created, fmt.Errorf("create %s: %w", acc.Username, err)
		}
		logger.Info("seed account created", zap.String("username", acc.Username), zap.String("role", string(acc.Role)))
		created++
	}
	return created, nil
}
