package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/rbac-task-api/internal/config"
)

// RevokedTokenPrefix namespaces revoked token ids in Redis.
const RevokedTokenPrefix = "revoked_token:"

var ErrCacheDown = errors.New("cache unavailable")

// TokenBlacklist records revoked token ids until they would have expired anyway.
type TokenBlacklist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

type RedisTokenBlacklist struct {
	client *redis.Client
}

// NewRedisClient builds a client from the Redis section of the configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
}

func NewRedisTokenBlacklist(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client}
}

func (r *RedisTokenBlacklist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	// An already expired token needs no entry.
	if ttl <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := r.client.Set(ctx, RevokedTokenPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *RedisTokenBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	n, err := r.client.Exists(ctx, RevokedTokenPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrCacheDown, err)
	}
	return n > 0, nil
}

func (r *RedisTokenBlacklist) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisTokenBlacklist) Close() error {
	return r.client.Close()
}

// NoopTokenBlacklist is used when Redis is not configured. Logout then only discards the token client side.
type NoopTokenBlacklist struct{}

func (NoopTokenBlacklist) Revoke(context.Context, string, time.Duration) error { return nil }

func (NoopTokenBlacklist) IsRevoked(context.Context, string) (bool, error) { return false, nil }

func (NoopTokenBlacklist) Ping(context.Context) error { return nil }

func (NoopTokenBlacklist) Close() error { return nil }
