package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/pkg/response"
)

type authService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req dto.LoginRequest) (*models.TokenPair, error)
	Refresh(ctx context.Context, req dto.RefreshRequest) (*models.TokenPair, error)
	Logout(ctx context.Context, user *models.User, req dto.RefreshRequest) error
	ChangePassword(ctx context.Context, user *models.User, req dto.ChangePasswordRequest) error
}

type profileService interface {
	Detail(ctx context.Context, user *models.User) (*models.UserDetail, error)
}

// AuthHandler wires account and session endpoints to the auth service.
type AuthHandler struct {
	service  authService
	profiles profileService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, profiles profileService) *AuthHandler {
	return &AuthHandler{service: svc, profiles: profiles}
}

// Register godoc
// @Summary Register account
// @Description Create a student account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /users/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid registration payload"))
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Login godoc
// @Summary Authenticate user
// @Description OAuth2 password-style login with form fields username and password
// @Tags Authentication
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /users/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bindError(err, "invalid login payload"))
		return
	}

	pair, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pair, nil)
}

// Refresh godoc
// @Summary Rotate refresh token
// @Description Exchange a refresh token for a new token pair; the old token stops working
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.RefreshRequest true "Refresh payload"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid refresh payload"))
		return
	}

	pair, err := h.service.Refresh(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pair, nil)
}

// Logout godoc
// @Summary Logout current session
// @Description Revoke one of the caller's refresh tokens
// @Tags Authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.RefreshRequest true "Refresh token"
// @Success 204
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "refresh token required"))
		return
	}

	if err := h.service.Logout(c.Request.Context(), user, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ChangePassword godoc
// @Summary Change password
// @Description Change the caller's password and revoke all of their refresh tokens
// @Tags Authentication
// @Accept json
// @Security BearerAuth
// @Param payload body dto.ChangePasswordRequest true "Change password"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /users/me/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid payload"))
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), user, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Me godoc
// @Summary Get current user
// @Description Returns the authenticated user with taught and enrolled courses
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /users/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	detail, err := h.profiles.Detail(c.Request.Context(), user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}
