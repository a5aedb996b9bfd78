package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/coursehub-api/internal/auth"
	"github.com/noah-isme/coursehub-api/internal/models"
	appErrors "github.com/noah-isme/coursehub-api/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// coursesCachePattern matches every cached course payload.
const coursesCachePattern = "courses:*"

func newPagination(page, pageSize, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
}

// lookupError maps a repository read failure for entity to NotFound-style or internal errors.
func lookupError(err error, notFound *appErrors.Error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(notFound, entity+" not found")
	}
	return appErrors.Internal(err, "failed to load "+entity)
}

// invalidateCourses drops cached course payloads after a write; the cache logs failures.
func invalidateCourses(ctx context.Context, cache *CacheService) {
	_ = cache.Invalidate(ctx, coursesCachePattern)
}

// hashPassword reports secrets bcrypt cannot take as validation failures.
func hashPassword(h *auth.PasswordHasher, plaintext string) (string, error) {
	hash, err := h.Hash(plaintext)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", appErrors.Validation(err, "password must be at most 72 bytes")
	}
	if err != nil {
		return "", appErrors.Internal(err, "failed to hash password")
	}
	return hash, nil
}
