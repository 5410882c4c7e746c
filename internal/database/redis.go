package database

import (
	"context"
	"fmt"
	"net"
	"time"

	"carmine/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects to the Redis instance holding sessions, refresh tokens
// and rate limit counters.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// RedisHealth reports whether client answers a ping.
func RedisHealth(ctx context.Context, client redis.Cmdable) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return map[string]string{
			"status": "down",
			"error":  fmt.Sprintf("redis down: %v", err),
		}
	}
	return map[string]string{"status": "up"}
}
