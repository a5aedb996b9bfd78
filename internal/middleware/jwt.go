package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursehub-api/internal/models"
	appErrors "github.com/noah-isme/coursehub-api/pkg/errors"
	"github.com/noah-isme/coursehub-api/pkg/response"
)

// ContextUserKey is the gin context key storing the authenticated user.
const ContextUserKey = "currentUser"

// SessionResolver maps a bearer access token to its user.
type SessionResolver interface {
	Resolve(ctx context.Context, bearer string) (*models.User, error)
}

// JWT protects routes by requiring a valid access token.
func JWT(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Header("WWW-Authenticate", "Bearer")
			response.Abort(c, appErrors.Clone(appErrors.ErrUnauthorized, "not authenticated"))
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.Header("WWW-Authenticate", "Bearer")
			response.Abort(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			return
		}

		user, err := resolver.Resolve(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			response.Abort(c, err)
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by JWT.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}
