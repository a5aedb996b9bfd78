package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/pkg/response"
)

type assignmentService interface {
	Create(ctx context.Context, req dto.CreateAssignmentRequest) (*models.Assignment, error)
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, *models.Pagination, error)
	Get(ctx context.Context, id int64) (*models.Assignment, error)
	Update(ctx context.Context, id int64, req dto.UpdateAssignmentRequest) (*models.Assignment, error)
	Delete(ctx context.Context, id int64) (*models.Assignment, error)
}

// AssignmentHandler exposes assignment endpoints.
type AssignmentHandler struct {
	service assignmentService
}

// NewAssignmentHandler builds a new handler.
func NewAssignmentHandler(svc assignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// Create godoc
// @Summary Create assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid assignment payload"))
		return
	}

	assignment, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// List godoc
// @Summary List assignments
// @Tags Assignments
// @Produce json
// @Param title query string false "Title contains"
// @Param course_id query int false "Course ID"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	courseID, err := queryID(c, "course_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	page := pageRequest(c)
	filter := models.AssignmentFilter{
		Title:    c.Query("title"),
		CourseID: courseID,
		Page:     page.Page,
		PageSize: page.PageSize,
	}

	items, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get assignment
// @Tags Assignments
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	assignment, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Update godoc
// @Summary Update assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Param payload body dto.UpdateAssignmentRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/{id} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid assignment payload"))
		return
	}

	assignment, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Delete godoc
// @Summary Delete assignment
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	assignment, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}
