package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/pkg/response"
)

type blogService interface {
	CreateUser(ctx context.Context, req dto.BlogUserRequest) (*models.BlogUser, error)
	ListUsers(ctx context.Context, page models.PageRequest) ([]models.BlogUserDetail, *models.Pagination, error)
	GetUser(ctx context.Context, id int64) (*models.BlogUserDetail, error)
	UpdateUser(ctx context.Context, id int64, req dto.BlogUserRequest) (*models.BlogUser, error)
	DeleteUser(ctx context.Context, id int64) (*models.BlogUser, error)

	CreatePost(ctx context.Context, userID int64, req dto.CreatePostRequest) (*models.Post, error)
	ListPosts(ctx context.Context, page models.PageRequest) ([]models.Post, *models.Pagination, error)
	GetPost(ctx context.Context, id int64) (*models.Post, error)
	UpdatePost(ctx context.Context, id int64, req dto.UpdatePostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, id int64) error
}

// BlogHandler exposes blog user and post endpoints.
type BlogHandler struct {
	service blogService
}

// NewBlogHandler builds a new handler.
func NewBlogHandler(svc blogService) *BlogHandler {
	return &BlogHandler{service: svc}
}

// CreateUser godoc
// @Summary Create blog user
// @Tags Blog
// @Accept json
// @Produce json
// @Param payload body dto.BlogUserRequest true "User payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /users [post]
func (h *BlogHandler) CreateUser(c *gin.Context) {
	var req dto.BlogUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid user payload"))
		return
	}
	user, err := h.service.CreateUser(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// ListUsers godoc
// @Summary List blog users with their posts
// @Tags Blog
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /users [get]
func (h *BlogHandler) ListUsers(c *gin.Context) {
	items, pagination, err := h.service.ListUsers(c.Request.Context(), pageRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// GetUser godoc
// @Summary Get blog user
// @Tags Blog
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [get]
func (h *BlogHandler) GetUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	user, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// UpdateUser godoc
// @Summary Update blog user
// @Tags Blog
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param payload body dto.BlogUserRequest true "User payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [put]
func (h *BlogHandler) UpdateUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.BlogUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid user payload"))
		return
	}
	user, err := h.service.UpdateUser(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// DeleteUser godoc
// @Summary Delete blog user
// @Description Delete a user and all of their posts
// @Tags Blog
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [delete]
func (h *BlogHandler) DeleteUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	user, err := h.service.DeleteUser(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// CreatePost godoc
// @Summary Create post for a user
// @Tags Blog
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param payload body dto.CreatePostRequest true "Post payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id}/posts [post]
func (h *BlogHandler) CreatePost(c *gin.Context) {
	userID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid post payload"))
		return
	}
	post, err := h.service.CreatePost(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, post)
}

// ListPosts godoc
// @Summary List posts
// @Tags Blog
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /posts [get]
func (h *BlogHandler) ListPosts(c *gin.Context) {
	items, pagination, err := h.service.ListPosts(c.Request.Context(), pageRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// GetPost godoc
// @Summary Get post
// @Tags Blog
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /posts/{id} [get]
func (h *BlogHandler) GetPost(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	post, err := h.service.GetPost(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, post, nil)
}

// UpdatePost godoc
// @Summary Update post
// @Tags Blog
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param payload body dto.UpdatePostRequest true "Post payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /posts/{id} [put]
func (h *BlogHandler) UpdatePost(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid post payload"))
		return
	}
	post, err := h.service.UpdatePost(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, post, nil)
}

// DeletePost godoc
// @Summary Delete post
// @Tags Blog
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /posts/{id} [delete]
func (h *BlogHandler) DeletePost(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.DeletePost(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "post deleted"}, nil)
}
