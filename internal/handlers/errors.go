package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	apierrors "github.com/yukikurage/rbac-task-api/internal/errors"
	"github.com/yukikurage/rbac-task-api/internal/repository"
	"github.com/yukikurage/rbac-task-api/internal/services"
)

// respondServiceError maps service and repository errors onto the API envelope
func respondServiceError(c *gin.Context, err error) {
	var verr *services.ValidationError

	switch {
	case errors.As(err, &verr):
		apierrors.ValidationFailed(c, verr.Fields)
	case errors.Is(err, repository.ErrInvalidID):
		apierrors.InvalidFormat(c, "Invalid ID format")
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrNotAuthorized):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, "Email is already registered")
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.UnauthorizedWithCode(c, apierrors.ErrCodeInvalidCredentials, "Invalid email or password")
	case errors.Is(err, context.DeadlineExceeded):
		apierrors.RequestTimeout(c)
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).
			Str("path", c.FullPath()).
			Msg("unhandled service error")
		apierrors.InternalError(c, "")
	}
}
