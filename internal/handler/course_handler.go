package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/internal/service"
	appErrors "github.com/noah-isme/coursehub-api/pkg/errors"
	"github.com/noah-isme/coursehub-api/pkg/response"
)

type courseService interface {
	Create(ctx context.Context, req dto.CreateCourseRequest) (*models.Course, error)
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, *models.Pagination, error)
	Get(ctx context.Context, id int64) (*models.CourseDetail, error)
	Update(ctx context.Context, id int64, req dto.UpdateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, id int64) (*models.Course, error)
}

type enrollmentService interface {
	Enroll(ctx context.Context, courseID, userID int64) (*models.User, error)
	Unenroll(ctx context.Context, courseID, userID int64) (*models.User, error)
}

type rosterExporter interface {
	Export(ctx context.Context, courseID int64, format string) (*service.ExportResult, error)
}

// CourseHandler exposes course, enrollment and roster endpoints.
type CourseHandler struct {
	courses     courseService
	enrollments enrollmentService
	roster      rosterExporter
}

// NewCourseHandler builds a new handler.
func NewCourseHandler(courses courseService, enrollments enrollmentService, roster rosterExporter) *CourseHandler {
	return &CourseHandler{courses: courses, enrollments: enrollments, roster: roster}
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid course payload"))
		return
	}

	course, err := h.courses.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// List godoc
// @Summary List courses
// @Description List courses with their students and assignments
// @Tags Courses
// @Produce json
// @Param title query string false "Title contains"
// @Param teacher_id query int false "Teacher ID"
// @Param student_username query string false "Enrolled student's username contains"
// @Param assignment_title query string false "Assignment title contains"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	teacherID, err := queryID(c, "teacher_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	page := pageRequest(c)
	filter := models.CourseFilter{
		Title:           c.Query("title"),
		TeacherID:       teacherID,
		StudentUsername: c.Query("student_username"),
		AssignmentTitle: c.Query("assignment_title"),
		Page:            page.Page,
		PageSize:        page.PageSize,
	}

	courses, pagination, err := h.courses.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, pagination)
}

// Get godoc
// @Summary Get course
// @Tags Courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	course, err := h.courses.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param payload body dto.UpdateCourseRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid course payload"))
		return
	}

	course, err := h.courses.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Delete godoc
// @Summary Delete course
// @Description Delete a course with its enrollments and assignments
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	course, err := h.courses.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Enroll godoc
// @Summary Enroll user
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param user_id query int true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/enroll [post]
func (h *CourseHandler) Enroll(c *gin.Context) {
	courseID, userID, err := enrollmentTarget(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.enrollments.Enroll(c.Request.Context(), courseID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Unenroll godoc
// @Summary Unenroll user
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param user_id query int true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/enroll [delete]
func (h *CourseHandler) Unenroll(c *gin.Context) {
	courseID, userID, err := enrollmentTarget(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.enrollments.Unenroll(c.Request.Context(), courseID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

func enrollmentTarget(c *gin.Context) (int64, int64, error) {
	courseID, err := pathID(c, "id")
	if err != nil {
		return 0, 0, err
	}
	userID, err := queryID(c, "user_id")
	if err != nil {
		return 0, 0, err
	}
	if userID == nil {
		return 0, 0, appErrors.Clone(appErrors.ErrValidation, "user_id is required")
	}
	return courseID, *userID, nil
}

// Roster godoc
// @Summary Export course roster
// @Description Download the enrolled students of a course as CSV or PDF
// @Tags Courses
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/roster [get]
func (h *CourseHandler) Roster(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.roster.Export(c.Request.Context(), id, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}
