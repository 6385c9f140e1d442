package redis_client

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/stmfeed/pkg/config"
)

// Connect returns nil without error when no address is configured.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, nil
	}

	options := &redis.Options{
		Addr: cfg.Address,
		DB:   cfg.Database,
	}

	if cfg.Password != "" {
		options.Password = cfg.Password
	}

	client := redis.NewClient(options)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	log.Info().Str("address", cfg.Address).Int("database", cfg.Database).Msg("Connected to Redis")

	return client, nil
}
