package blacklist

import (
	"context"
	"fmt"

	"github.com/campuskit/tokenauth/config"
	"github.com/campuskit/tokenauth/services/logging"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func ProvideStore(lc fx.Lifecycle, cfg *config.Config, logger *logging.Service) (Store, error) {
	switch cfg.Blacklist.Store {
	case "memory":
		store := NewMemoryStore()
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				store.Close()
				return nil
			},
		})
		if logger != nil {
			logger.Info("in-memory blacklist store initialized")
		}
		return store, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Blacklist.RedisAddr,
			Password: cfg.Blacklist.RedisPassword,
			DB:       cfg.Blacklist.RedisDB,
		})
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := client.Ping(ctx).Err(); err != nil {
					// The gateway fails open on cache outage, so an
					// unreachable Redis at startup is logged, not fatal.
					if logger != nil {
						logger.Error("blacklist redis unreachable at startup",
							zap.String("addr", cfg.Blacklist.RedisAddr),
							zap.Error(err))
					}
				}
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return client.Close()
			},
		})
		if logger != nil {
			logger.Info("redis blacklist store initialized",
				zap.String("addr", cfg.Blacklist.RedisAddr))
		}
		return NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("unsupported blacklist store type: %s (supported: memory, redis)", cfg.Blacklist.Store)
	}
}

func ProvideBlacklistService(cfg *config.Config, store Store, logger *logging.Service) *Service {
	return NewService(cfg, store, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideStore),
	fx.Provide(ProvideBlacklistService),
)
