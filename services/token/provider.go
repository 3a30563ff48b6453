package token

import (
	"github.com/campuskit/tokenauth/config"
	"github.com/campuskit/tokenauth/services/logging"
	"go.uber.org/fx"
)

var Options = fx.Options(
	fx.Provide(NewTokenService),
)

func NewTokenService(cfg *config.Config, logger *logging.Service) *Service {
	return NewService(cfg, logger)
}
