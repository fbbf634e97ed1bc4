package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/rbac-task-api/internal/errors"
	"github.com/yukikurage/rbac-task-api/internal/repository"
)

// ValidateTaskID rejects task routes whose :id is not a well formed identifier.
// Ownership is checked by the task service, which knows the assignee and creator rules.
func ValidateTaskID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := repository.ValidateID(c.Param("id")); err != nil {
			apierrors.InvalidFormat(c, "Invalid task ID")
			return
		}
		c.Next()
	}
}
