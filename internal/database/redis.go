package database

import (
	"context"
	"log"
	"time"

	"supplier-portal/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// NewRedis returns nil when REDIS_ADDRESS is unset; callers fall back to
// in-memory stores.
func NewRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisAddress == "" {
		log.Println("REDIS_ADDRESS not set, using in-memory stores")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Println("Connected to Redis!")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return rdb.Close()
		},
	})

	return rdb, nil
}
