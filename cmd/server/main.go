package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/yukikurage/rbac-task-api/internal/cache"
	"github.com/yukikurage/rbac-task-api/internal/config"
	"github.com/yukikurage/rbac-task-api/internal/database"
	"github.com/yukikurage/rbac-task-api/internal/events"
	"github.com/yukikurage/rbac-task-api/internal/handlers"
	"github.com/yukikurage/rbac-task-api/internal/logger"
	"github.com/yukikurage/rbac-task-api/internal/repository"
	"github.com/yukikurage/rbac-task-api/internal/server"
	"github.com/yukikurage/rbac-task-api/internal/services"
)

// store is the pair of repositories backed by the configured database
type store struct {
	tasks repository.TaskRepository
	users repository.UserRepository
	close func()
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Env, cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	// Token revocation needs Redis. Without it logout is client side only.
	var blacklist cache.TokenBlacklist = cache.NoopTokenBlacklist{}
	if cfg.Redis.Addr != "" {
		blacklist = cache.NewRedisTokenBlacklist(cache.NewRedisClient(cfg.Redis))
		if err := blacklist.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis not reachable at startup")
		}
	} else {
		log.Warn().Msg("REDIS_ADDR not set, logout will not revoke tokens")
	}
	defer blacklist.Close()

	publisher, err := events.Connect(cfg.NATS, log)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer publisher.Close()

	authService := services.NewAuthService(st.users, services.NewTokenService(cfg.Auth), blacklist, cfg.Auth, log)
	taskService := services.NewTaskService(st.tasks, st.users, publisher, log)

	if _, err := authService.EnsureAdmin(ctx, services.AdminInput{
		Name:     cfg.Auth.AdminName,
		Email:    cfg.Auth.AdminEmail,
		Password: cfg.Auth.AdminPassword,
	}); err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	router := server.NewRouter(server.Dependencies{
		Config:      cfg,
		Logger:      log,
		AuthService: authService,
		TaskService: taskService,
		HealthChecks: map[string]handlers.Pinger{
			"database": st.tasks,
			"cache":    blacklist,
		},
	})

	return server.Run(ctx, cfg, router, log)
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	if cfg.Database.Driver == config.DriverMongo {
		client, err := database.ConnectMongo(ctx, cfg.Mongo, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		db := client.Database(cfg.Mongo.Database)
		if err := database.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("failed to create indexes: %w", err)
		}

		return &store{
			tasks: repository.NewMongoTaskRepository(db),
			users: repository.NewMongoUserRepository(db),
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					log.Error().Err(err).Msg("failed to disconnect from MongoDB")
				}
			},
		}, nil
	}

	// Connect to database
	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run migrations
	if err := database.Migrate(db, log); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &store{
		tasks: repository.NewTaskRepository(db),
		users: repository.NewUserRepository(db),
		close: func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}, nil
}
