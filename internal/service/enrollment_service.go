package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/internal/repository"
	appErrors "github.com/noah-isme/coursehub-api/pkg/errors"
)

type enrollmentRepository interface {
	Exists(ctx context.Context, courseID, userID int64) (bool, error)
	Create(ctx context.Context, courseID, userID int64) error
	Delete(ctx context.Context, courseID, userID int64) error
}

// EnrollmentService maintains the user/course enrollment ledger.
type EnrollmentService struct {
	repo    enrollmentRepository
	courses courseReader
	users   userReader
	cache   *CacheService
	logger  *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, courses courseReader, users userReader, cache *CacheService, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, courses: courses, users: users, cache: cache, logger: logger}
}

// Enroll adds the user to the course and returns the user.
func (s *EnrollmentService) Enroll(ctx context.Context, courseID, userID int64) (*models.User, error) {
	user, err := s.resolve(ctx, courseID, userID)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, courseID, userID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "user already enrolled in course")
	}

	if err := s.repo.Create(ctx, courseID, userID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "user already enrolled in course")
		}
		return nil, appErrors.Internal(err, "failed to enroll user")
	}

	s.logger.Info("user enrolled", zap.Int64("course_id", courseID), zap.Int64("user_id", userID))
	invalidateCourses(ctx, s.cache)
	return user, nil
}

// Unenroll removes the user from the course and returns the user.
func (s *EnrollmentService) Unenroll(ctx context.Context, courseID, userID int64) (*models.User, error) {
	user, err := s.resolve(ctx, courseID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, courseID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user is not enrolled in course")
		}
		return nil, appErrors.Internal(err, "failed to unenroll user")
	}

	s.logger.Info("user unenrolled", zap.Int64("course_id", courseID), zap.Int64("user_id", userID))
	invalidateCourses(ctx, s.cache)
	return user, nil
}

func (s *EnrollmentService) resolve(ctx context.Context, courseID, userID int64) (*models.User, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "course")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "user")
	}
	return user, nil
}
