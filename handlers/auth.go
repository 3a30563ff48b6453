package handlers

import (
	"errors"
	"net/http"

	"github.com/campuskit/tokenauth/services/auth"
	"github.com/campuskit/tokenauth/services/directory"
	"github.com/campuskit/tokenauth/services/logging"
	"github.com/campuskit/tokenauth/services/refreshtoken"
	"github.com/labstack/echo/v4"
	"github.com/mileusna/useragent"
	"go.uber.org/zap"
)

// All authentication failures share one response body so a caller cannot
// tell a missing account from a wrong secret or a revoked token.
const genericAuthFailure = "authentication failed"

type AuthHandler struct {
	authService *auth.Service
	logger      *logging.Service
}

func NewAuthHandler(authService *auth.Service, logger *logging.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

type LoginRequest struct {
	Identifier    string `json:"identifier"`
	Secret        string `json:"secret"`
	PrincipalKind string `json:"principal_kind"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutResponse struct {
	Success bool `json:"success"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	kind := directory.PrincipalKind(req.PrincipalKind)
	if req.Identifier == "" || req.Secret == "" || !kind.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "identifier, secret and principal_kind are required")
	}

	pair, err := h.authService.Login(c.Request().Context(), req.Identifier, req.Secret, kind, sessionInfoFrom(c))
	if err != nil {
		if errors.Is(err, directory.ErrUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "service temporarily unavailable")
		}
		return echo.NewHTTPError(http.StatusUnauthorized, genericAuthFailure)
	}

	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, genericAuthFailure)
	}

	pair, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, genericAuthFailure)
	}

	return c.JSON(http.StatusOK, pair)
}

// Logout revokes the subject's refresh tokens alongside the presented
// access token, so signing out one device signs out all of them.
func (h *AuthHandler) Logout(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")

	if err := h.authService.Logout(c.Request().Context(), authHeader); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return echo.NewHTTPError(http.StatusUnauthorized, genericAuthFailure)
		}
		if h.logger != nil {
			h.logger.Error("logout failed", zap.Error(err))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "logout failed")
	}

	return c.JSON(http.StatusOK, LogoutResponse{Success: true})
}

func sessionInfoFrom(c echo.Context) refreshtoken.SessionInfo {
	uaHeader := c.Request().Header.Get("User-Agent")
	info := refreshtoken.SessionInfo{
		IPAddress: c.RealIP(),
		UserAgent: uaHeader,
	}

	if uaHeader != "" {
		ua := useragent.Parse(uaHeader)
		info.DeviceInfo = map[string]any{
			"os":      ua.OS,
			"browser": ua.Name,
			"device":  ua.Device,
			"mobile":  ua.Mobile,
		}
	}

	return info
}
