package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Supported values for DB_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "development-only-secret-change-me-before-deploying"

var (
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	ErrInsecureJWTSecret = errors.New("JWT_SECRET must be set in production")
	ErrShortJWTSecret    = errors.New("JWT_SECRET must be at least 32 characters")
)

type Config struct {
	Env      string `env:"APP_ENV" env-default:"development"`
	GinMode  string `env:"GIN_MODE" env-default:"debug"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	Server    ServerConfig
	Database  DatabaseConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	NATS      NATSConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Host            string        `env:"HOST" env-default:""`
	Port            string        `env:"PORT" env-default:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	RequestTimeout  time.Duration `env:"SERVER_REQUEST_TIMEOUT" env-default:"10s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	StaticDir       string        `env:"STATIC_DIR" env-default:""`
}

type DatabaseConfig struct {
	Driver   string `env:"DB_DRIVER" env-default:"mongo"`
	DSN      string `env:"DB_DSN" env-default:""`
	Host     string `env:"DB_HOST" env-default:"localhost"`
	Port     string `env:"DB_PORT" env-default:"5432"`
	User     string `env:"DB_USER" env-default:"taskuser"`
	Password string `env:"DB_PASSWORD" env-default:"taskpassword"`
	Name     string `env:"DB_NAME" env-default:"task_management"`
	SSLMode  string `env:"DB_SSL_MODE" env-default:"disable"`
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	Database string        `env:"MONGO_DATABASE" env-default:"task_management"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT" env-default:"5s"`
}

type RedisConfig struct {
	Addr         string        `env:"REDIS_ADDR" env-default:""`
	Password     string        `env:"REDIS_PASSWORD" env-default:""`
	DB           int           `env:"REDIS_DB" env-default:"0"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" env-default:"10"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" env-default:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" env-default:"3s"`
}

type NATSConfig struct {
	URL           string `env:"NATS_URL" env-default:""`
	SubjectPrefix string `env:"NATS_SUBJECT_PREFIX" env-default:"tasks"`
}

type AuthConfig struct {
	JWTSecret       string        `env:"JWT_SECRET" env-default:"development-only-secret-change-me-before-deploying"`
	TokenTTL        time.Duration `env:"JWT_TTL" env-default:"24h"`
	Issuer          string        `env:"JWT_ISSUER" env-default:"rbac-task-api"`
	BCryptCost      int           `env:"BCRYPT_COST" env-default:"10"`
	AllowRoleSignup bool          `env:"AUTH_ALLOW_ROLE_SIGNUP" env-default:"false"`
	AdminName       string        `env:"ADMIN_NAME" env-default:"Administrator"`
	AdminEmail      string        `env:"ADMIN_EMAIL" env-default:""`
	AdminPassword   string        `env:"ADMIN_PASSWORD" env-default:""`
}

type RateLimitConfig struct {
	Enabled           bool          `env:"RATE_LIMIT_ENABLED" env-default:"true"`
	RequestsPerSecond float64       `env:"RATE_LIMIT_RPS" env-default:"10"`
	Burst             int           `env:"RATE_LIMIT_BURST" env-default:"20"`
	TTL               time.Duration `env:"RATE_LIMIT_TTL" env-default:"10m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints that tags cannot express.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMongo, DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, c.Database.Driver)
	}

	if c.IsProduction() && c.Auth.JWTSecret == DefaultJWTSecret {
		return ErrInsecureJWTSecret
	}
	if len(c.Auth.JWTSecret) < 32 {
		return ErrShortJWTSecret
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func (c *Config) ServerAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// GormDSN builds a driver specific DSN unless DB_DSN overrides it.
func (c *Config) GormDSN() string {
	db := c.Database
	if db.DSN != "" {
		return db.DSN
	}

	switch db.Driver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			db.User, db.Password, db.Host, db.Port, db.Name)
	case DriverSQLite:
		return db.Name + ".db"
	default:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			db.Host, db.Port, db.User, db.Password, db.Name, db.SSLMode)
	}
}
