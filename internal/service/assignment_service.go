package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
	appErrors "github.com/noah-isme/coursehub-api/pkg/errors"
)

type assignmentRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Assignment, error)
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id int64) error
}

type courseReader interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

// AssignmentService manages course assignments.
type AssignmentService struct {
	repo      assignmentRepository
	courses   courseReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(repo assignmentRepository, courses courseReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AssignmentService{repo: repo, courses: courses, cache: cache, validator: validate, logger: logger}
}

// Create adds an assignment to an existing course.
func (s *AssignmentService) Create(ctx context.Context, req dto.CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid assignment payload")
	}

	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "course")
	}

	assignment := &models.Assignment{Title: req.Title, Description: req.Description, CourseID: req.CourseID}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Internal(err, "failed to create assignment")
	}

	invalidateCourses(ctx, s.cache)
	return assignment, nil
}

// List returns paginated assignments.
func (s *AssignmentService) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, *models.Pagination, error) {
	assignments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list assignments")
	}
	return assignments, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns an assignment by ID.
func (s *AssignmentService) Get(ctx context.Context, id int64) (*models.Assignment, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "assignment")
	}
	return assignment, nil
}

// Update applies a partial update to title and description.
func (s *AssignmentService) Update(ctx context.Context, id int64, req dto.UpdateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid assignment payload")
	}

	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "assignment")
	}
	if req.Title != nil {
		assignment.Title = *req.Title
	}
	if req.Description != nil {
		assignment.Description = req.Description
	}

	if err := s.repo.Update(ctx, assignment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Internal(err, "failed to update assignment")
	}

	invalidateCourses(ctx, s.cache)
	return assignment, nil
}

// Delete removes an assignment and returns the deleted record.
func (s *AssignmentService) Delete(ctx context.Context, id int64) (*models.Assignment, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "assignment")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Internal(err, "failed to delete assignment")
	}

	invalidateCourses(ctx, s.cache)
	return assignment, nil
}
