package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursehub-api/internal/models"
	appErrors "github.com/noah-isme/coursehub-api/pkg/errors"
	"github.com/noah-isme/coursehub-api/pkg/response"
)

// RequireRoles lets the request through only when the authenticated user's
// role equals one of roles. It must run after JWT.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}

		if _, ok := allowed[user.Role]; !ok {
			response.Abort(c, appErrors.Clone(appErrors.ErrForbidden, "insufficient role"))
			return
		}
		c.Next()
	}
}
