package server

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yukikurage/rbac-task-api/internal/config"
	"github.com/yukikurage/rbac-task-api/internal/constants"
	apierrors "github.com/yukikurage/rbac-task-api/internal/errors"
	"github.com/yukikurage/rbac-task-api/internal/handlers"
	"github.com/yukikurage/rbac-task-api/internal/middleware"
	"github.com/yukikurage/rbac-task-api/internal/models"
	"github.com/yukikurage/rbac-task-api/internal/services"
)

// Dependencies are the services the router dispatches to
type Dependencies struct {
	Config      *config.Config
	Logger      zerolog.Logger
	AuthService *services.AuthService
	TaskService services.TaskService
	// HealthChecks are pinged by GET /health, keyed by dependency name
	HealthChecks map[string]handlers.Pinger
}

// NewRouter assembles the middleware chain and every route
func NewRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(deps.Logger),
		middleware.Recovery(deps.Logger),
		cors.New(corsConfig(cfg.CORS)),
	)
	if cfg.RateLimit.Enabled {
		r.Use(middleware.NewRateLimiter(cfg.RateLimit).Middleware())
	}
	r.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout))

	authHandler := handlers.NewAuthHandler(deps.AuthService)
	taskHandler := handlers.NewTaskHandler(deps.TaskService)
	healthHandler := handlers.NewHealthHandler(deps.HealthChecks)

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", middleware.RequireAuth(deps.AuthService), authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(deps.AuthService), authHandler.GetCurrentUser)
		}

		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(deps.AuthService))
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/stats", middleware.RequireRole(models.RoleAdmin), taskHandler.GetTaskStats)
			tasks.GET("/:id", middleware.ValidateTaskID(), taskHandler.GetTask)
			tasks.PUT("/:id", middleware.ValidateTaskID(), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.ValidateTaskID(), taskHandler.DeleteTask)
		}
	}

	r.NoRoute(noRoute(cfg.Server.StaticDir))

	return r
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", constants.HeaderRequestID},
		ExposeHeaders: []string{constants.HeaderRequestID, "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || slices.Contains(cfg.AllowedOrigins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
	}
	return c
}

// noRoute serves STATIC_DIR for unmatched GETs outside /api when configured
func noRoute(staticDir string) gin.HandlerFunc {
	var files http.Handler
	if staticDir != "" {
		files = http.FileServer(http.Dir(staticDir))
	}

	return func(c *gin.Context) {
		method := c.Request.Method
		if files != nil && (method == http.MethodGet || method == http.MethodHead) &&
			!strings.HasPrefix(c.Request.URL.Path, "/api/") {
			files.ServeHTTP(c.Writer, c.Request)
			return
		}
		apierrors.NotFound(c, "Route not found")
	}
}
