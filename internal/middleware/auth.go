package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yukikurage/rbac-task-api/internal/constants"
	apierrors "github.com/yukikurage/rbac-task-api/internal/errors"
	"github.com/yukikurage/rbac-task-api/internal/models"
	"github.com/yukikurage/rbac-task-api/internal/services"
)

// Authenticator resolves a bearer token to its claims
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.TokenClaims, error)
}

// RequireAuth checks the bearer token and stores the caller in the context
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			apierrors.Unauthorized(c, "Authorization header is required")
			return
		}
		if !strings.HasPrefix(header, constants.BearerPrefix) {
			apierrors.Unauthorized(c, "Authorization header must use Bearer token")
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, constants.BearerPrefix))
		claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrTokenRevoked):
				apierrors.UnauthorizedWithCode(c, apierrors.ErrCodeTokenRevoked, "Token has been revoked")
			case errors.Is(err, services.ErrInvalidToken):
				apierrors.Unauthorized(c, "Invalid or expired token")
			default:
				zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("token verification failed")
				apierrors.ServiceUnavailable(c, "Unable to verify token")
			}
			return
		}

		c.Set(constants.ContextKeyUserID, claims.UserID)
		c.Set(constants.ContextKeyUserRole, claims.Role)
		c.Set(constants.ContextKeyTokenClaims, claims)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, ok := c.Get(constants.ContextKeyUserID)
	if !ok {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}

// GetPrincipal retrieves the authenticated caller from context
func GetPrincipal(c *gin.Context) (models.Principal, bool) {
	userID, ok := GetUserID(c)
	if !ok {
		return models.Principal{}, false
	}
	role, ok := c.Get(constants.ContextKeyUserRole)
	if !ok {
		return models.Principal{}, false
	}
	userRole, ok := role.(models.UserRole)
	if !ok {
		return models.Principal{}, false
	}
	return models.Principal{UserID: userID, Role: userRole}, true
}

// GetTokenClaims retrieves the verified token claims from context
func GetTokenClaims(c *gin.Context) (*services.TokenClaims, bool) {
	value, ok := c.Get(constants.ContextKeyTokenClaims)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*services.TokenClaims)
	return claims, ok
}
