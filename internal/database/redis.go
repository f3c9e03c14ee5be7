package database

import (
	"context"
	"fmt"
	"masterdata-web/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects the cache, clear-flow and import-result store.
func NewRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis %s: %w", cfg.GetRedisAddr(), err)
	}

	return client, nil
}
