package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, DriverMongo, cfg.Database.Driver)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Auth.AllowRoleSignup)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.NATS.URL)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", " Postgres ")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example,http://b.example")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, ":9090", cfg.ServerAddr())
	assert.Equal(t, 90*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORS.AllowedOrigins)
	assert.InDelta(t, 2.5, cfg.RateLimit.RequestsPerSecond, 0.0001)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", EnvProduction)

	_, err := Load()
	assert.ErrorIs(t, err, ErrInsecureJWTSecret)

	t.Setenv("JWT_SECRET", "short")
	_, err = Load()
	assert.ErrorIs(t, err, ErrShortJWTSecret)

	t.Setenv("JWT_SECRET", "a-production-secret-that-is-long-enough")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestGormDSN(t *testing.T) {
	tests := []struct {
		name string
		db   DatabaseConfig
		want string
	}{
		{
			name: "override",
			db:   DatabaseConfig{Driver: DriverPostgres, DSN: "postgres://custom"},
			want: "postgres://custom",
		},
		{
			name: "postgres",
			db:   DatabaseConfig{Driver: DriverPostgres, Host: "db", Port: "5432", User: "u", Password: "p", Name: "tasks", SSLMode: "disable"},
			want: "host=db port=5432 user=u password=p dbname=tasks sslmode=disable",
		},
		{
			name: "mysql",
			db:   DatabaseConfig{Driver: DriverMySQL, Host: "db", Port: "3306", User: "u", Password: "p", Name: "tasks"},
			want: "u:p@tcp(db:3306)/tasks?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name: "sqlite",
			db:   DatabaseConfig{Driver: DriverSQLite, Name: "tasks"},
			want: "tasks.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Database: tt.db}
			assert.Equal(t, tt.want, cfg.GormDSN())
		})
	}
}
