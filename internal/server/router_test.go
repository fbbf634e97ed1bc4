package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/rbac-task-api/internal/cache"
	"github.com/yukikurage/rbac-task-api/internal/config"
	"github.com/yukikurage/rbac-task-api/internal/database"
	"github.com/yukikurage/rbac-task-api/internal/dto"
	"github.com/yukikurage/rbac-task-api/internal/handlers"
	"github.com/yukikurage/rbac-task-api/internal/repository"
	"github.com/yukikurage/rbac-task-api/internal/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
		Auth: config.AuthConfig{
			JWTSecret:       "router-test-secret-0123456789abcdef",
			TokenTTL:        time.Hour,
			Issuer:          "rbac-task-api",
			BCryptCost:      bcrypt.MinCost,
			AllowRoleSignup: true,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db, zerolog.Nop()))

	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	authService := services.NewAuthService(userRepo, services.NewTokenService(cfg.Auth), cache.NoopTokenBlacklist{}, cfg.Auth, zerolog.Nop())

	return NewRouter(Dependencies{
		Config:       cfg,
		Logger:       zerolog.Nop(),
		AuthService:  authService,
		TaskService:  services.NewTaskService(taskRepo, userRepo, nil, zerolog.Nop()),
		HealthChecks: map[string]handlers.Pinger{"database": taskRepo},
	})
}

func call(r *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func register(t *testing.T, r *gin.Engine, name, role string) string {
	t.Helper()
	w := call(r, http.MethodPost, "/api/auth/register", map[string]string{
		"name":     name,
		"email":    name + "@example.com",
		"password": "password123",
		"role":     role,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t, testConfig())

	w := call(r, http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_TaskLifecycle(t *testing.T) {
	r := newTestRouter(t, testConfig())
	token := register(t, r, "alice", "")

	w := call(r, http.MethodPost, "/api/tasks", map[string]string{"title": "Ship it", "description": "v1"}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var task dto.TaskDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))

	w = call(r, http.MethodPut, "/api/tasks/"+task.ID, map[string]string{"status": "done"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"done"`)

	w = call(r, http.MethodGet, "/api/tasks?status=done", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.TaskListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Tasks, 1)

	w = call(r, http.MethodDelete, "/api/tasks/"+task.ID, nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(r, http.MethodGet, "/api/tasks/"+task.ID, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_AuthAndRoles(t *testing.T) {
	r := newTestRouter(t, testConfig())
	userToken := register(t, r, "bob", "")
	adminToken := register(t, r, "root", "admin")

	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/tasks", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, call(r, http.MethodGet, "/api/tasks/123", nil, userToken).Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodGet, "/api/tasks/stats", nil, userToken).Code)

	w := call(r, http.MethodGet, "/api/tasks/stats", nil, adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"byStatus":[],"byPriority":[]}`, w.Body.String())
}

func TestRouter_NotFound(t *testing.T) {
	r := newTestRouter(t, testConfig())

	w := call(r, http.MethodGet, "/api/unknown", nil, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestRouter_StaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>tasks</h1>"), 0o644))

	cfg := testConfig()
	cfg.Server.StaticDir = dir
	r := newTestRouter(t, cfg)

	w := call(r, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>tasks</h1>")

	assert.Equal(t, http.StatusNotFound, call(r, http.MethodGet, "/api/missing", nil, "").Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 2, TTL: time.Minute}
	r := newTestRouter(t, cfg)

	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/health", nil, "").Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/health", nil, "").Code)

	w := call(r, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestCorsConfig(t *testing.T) {
	all := corsConfig(config.CORSConfig{AllowedOrigins: []string{"*"}})
	assert.True(t, all.AllowAllOrigins)
	assert.Empty(t, all.AllowOrigins)

	listed := corsConfig(config.CORSConfig{AllowedOrigins: []string{"https://app.example.com"}})
	assert.False(t, listed.AllowAllOrigins)
	assert.Equal(t, []string{"https://app.example.com"}, listed.AllowOrigins)
}
