package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursehub-api/internal/middleware"
	"github.com/noah-isme/coursehub-api/internal/models"
	appErrors "github.com/noah-isme/coursehub-api/pkg/errors"
)

func currentUser(c *gin.Context) (*models.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, appErrors.ErrUnauthorized
	}
	return user, nil
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Validation(err, "invalid "+name)
	}
	return id, nil
}

// queryID parses a positive integer query parameter. Absent parameters yield nil.
func queryID(c *gin.Context, name string) (*int64, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, appErrors.Validation(err, "invalid "+name)
	}
	return &id, nil
}

func pageRequest(c *gin.Context) models.PageRequest {
	var page models.PageRequest
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page.Page = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		page.PageSize = v
	}
	return page
}

func bindError(err error, message string) error {
	return appErrors.Validation(err, message)
}
