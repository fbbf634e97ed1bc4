package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/rbac-task-api/internal/errors"
	"github.com/yukikurage/rbac-task-api/internal/models"
)

// RequireRole admits only callers holding one of roles. Must run after RequireAuth.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}

		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}

		apierrors.Forbidden(c, "Insufficient role for this resource")
	}
}
