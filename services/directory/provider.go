package directory

import (
	"github.com/campuskit/tokenauth/config"
	"github.com/campuskit/tokenauth/services/logging"
	"go.uber.org/fx"
)

func ProvideDirectory(cfg *config.Config, logger *logging.Service) Directory {
	return NewClient(cfg, logger)
}

func ProvideVerifier(dir Directory, logger *logging.Service) *Verifier {
	return NewVerifier(dir, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideDirectory),
	fx.Provide(ProvideVerifier),
)
