package refreshtoken

import (
	"context"

	"github.com/campuskit/tokenauth/config"
	"github.com/campuskit/tokenauth/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideRefreshTokenService(lc fx.Lifecycle, db *gorm.DB, cfg *config.Config, logger *logging.Service) Store {
	service := NewService(db, cfg, logger)

	if cfg.RefreshToken.CleanupInterval > 0 {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				service.StartCleanupWorker()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				service.StopCleanupWorker()
				return nil
			},
		})
	}

	return service
}

var Options = fx.Options(
	fx.Provide(ProvideRefreshTokenService),
)
