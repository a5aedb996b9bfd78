package service

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/internal/repository"
	appErrors "github.com/noah-isme/coursehub-api/pkg/errors"
)

type courseRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	ExistsByTitleAndTeacher(ctx context.Context, title string, teacherID int64) (bool, error)
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
}

type userReader interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type courseStudentReader interface {
	StudentsByCourse(ctx context.Context, courseIDs []int64) (map[int64][]models.UserSummary, error)
}

type courseAssignmentReader interface {
	SummariesByCourse(ctx context.Context, courseIDs []int64) (map[int64][]models.AssignmentSummary, error)
}

type coursePage struct {
	Items      []models.CourseDetail `json:"items"`
	Pagination models.Pagination     `json:"pagination"`
}

// CourseService manages courses and assembles their student and assignment views.
type CourseService struct {
	repo        courseRepository
	users       userReader
	students    courseStudentReader
	assignments courseAssignmentReader
	cache       *CacheService
	cacheTTL    time.Duration
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo courseRepository, users userReader, students courseStudentReader, assignments courseAssignmentReader, cache *CacheService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{
		repo:        repo,
		users:       users,
		students:    students,
		assignments: assignments,
		cache:       cache,
		cacheTTL:    cacheTTL,
		validator:   validate,
		logger:      logger,
	}
}

// Create registers a course for an existing teacher.
func (s *CourseService) Create(ctx context.Context, req dto.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid course payload")
	}

	if _, err := s.users.FindByID(ctx, req.TeacherID); err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "teacher")
	}

	if err := s.ensureTitleFree(ctx, req.Title, req.TeacherID); err != nil {
		return nil, err
	}

	teacherID := req.TeacherID
	course := &models.Course{Title: req.Title, Description: req.Description, TeacherID: &teacherID}
	if err := s.repo.Create(ctx, course); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "course title already used by this teacher")
		}
		return nil, appErrors.Internal(err, "failed to create course")
	}

	invalidateCourses(ctx, s.cache)
	return course, nil
}

func (s *CourseService) ensureTitleFree(ctx context.Context, title string, teacherID int64) error {
	exists, err := s.repo.ExistsByTitleAndTeacher(ctx, title, teacherID)
	if err != nil {
		return appErrors.Internal(err, "failed to check course title")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "course title already used by this teacher")
	}
	return nil
}

// List returns paginated courses with students and assignments.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, *models.Pagination, error) {
	key := courseListKey(filter)
	var cached coursePage
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached.Items, &cached.Pagination, nil
	}

	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list courses")
	}

	details, err := s.withRelations(ctx, courses)
	if err != nil {
		return nil, nil, err
	}
	pagination := newPagination(filter.Page, filter.PageSize, total)

	_ = s.cache.Set(ctx, key, coursePage{Items: details, Pagination: *pagination}, s.cacheTTL)
	return details, pagination, nil
}

// Get returns a course with students and assignments.
func (s *CourseService) Get(ctx context.Context, id int64) (*models.CourseDetail, error) {
	key := CacheKey("courses", strconv.FormatInt(id, 10))
	var cached models.CourseDetail
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "course")
	}

	details, err := s.withRelations(ctx, []models.Course{*course})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, key, details[0], s.cacheTTL)
	return &details[0], nil
}

func (s *CourseService) withRelations(ctx context.Context, courses []models.Course) ([]models.CourseDetail, error) {
	ids := make([]int64, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}

	students, err := s.students.StudentsByCourse(ctx, ids)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load course students")
	}
	assignments, err := s.assignments.SummariesByCourse(ctx, ids)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load course assignments")
	}

	details := make([]models.CourseDetail, 0, len(courses))
	for _, c := range courses {
		detail := models.CourseDetail{
			Course:      c,
			Students:    students[c.ID],
			Assignments: assignments[c.ID],
		}
		if detail.Students == nil {
			detail.Students = []models.UserSummary{}
		}
		if detail.Assignments == nil {
			detail.Assignments = []models.AssignmentSummary{}
		}
		details = append(details, detail)
	}
	return details, nil
}

// Update applies a partial update to title and description.
func (s *CourseService) Update(ctx context.Context, id int64, req dto.UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid course payload")
	}

	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "course")
	}

	if req.Title != nil && *req.Title != course.Title {
		if course.TeacherID != nil {
			if err := s.ensureTitleFree(ctx, *req.Title, *course.TeacherID); err != nil {
				return nil, err
			}
		}
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = req.Description
	}

	if err := s.repo.Update(ctx, course); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, appErrors.Clone(appErrors.ErrConflict, "course title already used by this teacher")
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Internal(err, "failed to update course")
	}

	invalidateCourses(ctx, s.cache)
	return course, nil
}

// Delete removes a course with its enrollments and assignments.
func (s *CourseService) Delete(ctx context.Context, id int64) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "course")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Internal(err, "failed to delete course")
	}

	s.logger.Info("course deleted", zap.Int64("course_id", id))
	invalidateCourses(ctx, s.cache)
	return course, nil
}

func courseListKey(filter models.CourseFilter) string {
	params := url.Values{}
	params.Set("title", filter.Title)
	params.Set("student", filter.StudentUsername)
	params.Set("assignment", filter.AssignmentTitle)
	if filter.TeacherID != nil {
		params.Set("teacher", strconv.FormatInt(*filter.TeacherID, 10))
	}
	params.Set("page", strconv.Itoa(filter.Page))
	params.Set("size", strconv.Itoa(filter.PageSize))
	return CacheKey("courses", "list", params.Encode())
}
