package auth

import (
	"github.com/campuskit/tokenauth/config"
	"github.com/campuskit/tokenauth/services/blacklist"
	"github.com/campuskit/tokenauth/services/directory"
	"github.com/campuskit/tokenauth/services/logging"
	"github.com/campuskit/tokenauth/services/refreshtoken"
	"github.com/campuskit/tokenauth/services/token"
	"go.uber.org/fx"
)

func ProvideAuthService(cfg *config.Config, verifier *directory.Verifier, codec *token.Service, store refreshtoken.Store, blacklistSvc *blacklist.Service, logger *logging.Service) *Service {
	return NewService(cfg, verifier, codec, store, blacklistSvc, logger)
}

var Options = fx.Options(
	fx.Provide(ProvideAuthService),
)
