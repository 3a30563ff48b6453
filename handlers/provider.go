package handlers

import (
	"github.com/campuskit/tokenauth/config"
	"github.com/campuskit/tokenauth/middleware/ratelimit"
	tokenauthmw "github.com/campuskit/tokenauth/middleware/tokenauth"
	"github.com/campuskit/tokenauth/server"
	"github.com/campuskit/tokenauth/services/auth"
	"github.com/campuskit/tokenauth/services/blacklist"
	"github.com/campuskit/tokenauth/services/logging"
	"github.com/campuskit/tokenauth/services/token"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

func ProvideAuthHandler(authService *auth.Service, logger *logging.Service) *AuthHandler {
	return NewAuthHandler(authService, logger)
}

func RegisterRoutes(srv *server.Server, h *AuthHandler, codec *token.Service, blacklistSvc *blacklist.Service, cfg *config.Config, logger *logging.Service) {
	loginMiddleware := []echo.MiddlewareFunc{}
	if cfg.RateLimit.Enabled {
		loginMiddleware = append(loginMiddleware, ratelimit.Middleware(&ratelimit.Config{
			Rate:   cfg.RateLimit.Rate,
			Period: cfg.RateLimit.Period,
		}))
	}

	srv.Post("/auth/login", h.Login, loginMiddleware...)
	srv.Post("/auth/refresh", h.Refresh)
	srv.Post("/auth/logout", h.Logout)

	admission := tokenauthmw.RequireToken(codec, blacklistSvc, logger)
	srv.Get("/auth/me", h.Me, admission)
}

var Module = fx.Options(
	fx.Provide(ProvideAuthHandler),
	fx.Invoke(RegisterRoutes),
)
