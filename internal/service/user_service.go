package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-api/internal/auth"
	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/internal/repository"
	appErrors "github.com/noah-isme/coursehub-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error
}

type sessionRevoker interface {
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
}

type taughtCourseReader interface {
	SummariesByTeacher(ctx context.Context, teacherIDs []int64) (map[int64][]models.CourseSummary, error)
}

type enrolledCourseReader interface {
	CoursesByUser(ctx context.Context, userIDs []int64) (map[int64][]models.CourseSummary, error)
}

// UserService handles user administration and profile reads.
type UserService struct {
	repo      userRepository
	taught    taughtCourseReader
	enrolled  enrolledCourseReader
	passwords *auth.PasswordHasher
	sessions  sessionRevoker
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService. sessions may be nil, in
// which case an admin password reset leaves existing refresh tokens alive.
func NewUserService(repo userRepository, taught taughtCourseReader, enrolled enrolledCourseReader, passwords *auth.PasswordHasher, sessions sessionRevoker, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if passwords == nil {
		passwords = auth.NewPasswordHasher(0)
	}
	return &UserService{repo: repo, taught: taught, enrolled: enrolled, passwords: passwords, sessions: sessions, cache: cache, validator: validate, logger: logger}
}

// List returns paginated users with their course relations resolved.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.UserDetail, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list users")
	}

	details, err := s.withCourses(ctx, users)
	if err != nil {
		return nil, nil, err
	}
	return details, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a single user with course relations.
func (s *UserService) Get(ctx context.Context, id int64) (*models.UserDetail, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrUserNotFound, "user")
	}
	return s.Detail(ctx, user)
}

// Detail resolves the course relations of an already loaded user.
func (s *UserService) Detail(ctx context.Context, user *models.User) (*models.UserDetail, error) {
	details, err := s.withCourses(ctx, []models.User{*user})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *UserService) withCourses(ctx context.Context, users []models.User) ([]models.UserDetail, error) {
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	taught, err := s.taught.SummariesByTeacher(ctx, ids)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load taught courses")
	}
	enrolled, err := s.enrolled.CoursesByUser(ctx, ids)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load enrolled courses")
	}

	details := make([]models.UserDetail, 0, len(users))
	for _, u := range users {
		details = append(details, models.UserDetail{
			User:            u,
			TaughtCourses:   nonNilCourses(taught[u.ID]),
			EnrolledCourses: nonNilCourses(enrolled[u.ID]),
		})
	}
	return details, nil
}

func nonNilCourses(courses []models.CourseSummary) []models.CourseSummary {
	if courses == nil {
		return []models.CourseSummary{}
	}
	return courses
}

// Update applies a partial update. Username and email must stay unique.
func (s *UserService) Update(ctx context.Context, id int64, req dto.UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid user payload")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrUserNotFound, "user")
	}

	if req.Username != nil && *req.Username != user.Username {
		if err := s.ensureFree(ctx, s.repo.FindByUsername, *req.Username, id, "username already taken"); err != nil {
			return nil, err
		}
		user.Username = *req.Username
	}
	if req.Email != nil && *req.Email != user.Email {
		if err := s.ensureFree(ctx, s.repo.FindByEmail, *req.Email, id, "email already taken"); err != nil {
			return nil, err
		}
		user.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := hashPassword(s.passwords, *req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, appErrors.Clone(appErrors.ErrConflict, "username or email already taken")
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrUserNotFound, "")
		}
		return nil, appErrors.Internal(err, "failed to update user")
	}

	if req.Password != nil && s.sessions != nil {
		revoked, err := s.sessions.DeleteByUser(ctx, user.ID)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to revoke refresh tokens")
		}
		s.logger.Info("password reset by admin", zap.Int64("user_id", user.ID), zap.Int64("revoked_tokens", revoked))
	}

	invalidateCourses(ctx, s.cache)
	return user, nil
}

func (s *UserService) ensureFree(ctx context.Context, find func(context.Context, string) (*models.User, error), value string, selfID int64, conflict string) error {
	existing, err := find(ctx, value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Internal(err, "failed to check uniqueness")
	}
	if existing.ID != selfID {
		return appErrors.Clone(appErrors.ErrConflict, conflict)
	}
	return nil
}

// Delete removes a user and returns the deleted record.
func (s *UserService) Delete(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrUserNotFound, "user")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUserNotFound, "")
		}
		return nil, appErrors.Internal(err, "failed to delete user")
	}

	s.logger.Info("user deleted", zap.Int64("user_id", id))
	invalidateCourses(ctx, s.cache)
	return user, nil
}
