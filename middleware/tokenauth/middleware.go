package tokenauth

import (
	"net/http"
	"strings"

	"github.com/campuskit/tokenauth/services/blacklist"
	"github.com/campuskit/tokenauth/services/logging"
	"github.com/campuskit/tokenauth/services/token"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	SubjectIDKey = "_auth_subject_id"
	RoleKey      = "_auth_role"
	ClaimsKey    = "_auth_claims"
)

// RequireToken is the gateway admission check run on every protected
// request: verify signature and expiry, then consult the blacklist.
//
// A blacklist failure admits the request (fail-open): availability is
// preferred over strictness, at the cost of honoring revoked tokens
// while the cache is down. The failure is logged at error level so an
// outage is operationally visible.
func RequireToken(codec *token.Service, blacklistSvc *blacklist.Service, logger *logging.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header required")
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Access token required")
			}

			claims, err := codec.Validate(tokenString)
			if err != nil {
				switch err {
				case token.ErrExpiredToken:
					return echo.NewHTTPError(http.StatusUnauthorized, "Access token has expired")
				case token.ErrMalformedToken:
					return echo.NewHTTPError(http.StatusUnauthorized, "Malformed access token")
				case token.ErrInvalidSignature:
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid access token signature")
				default:
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid access token")
				}
			}

			if blacklistSvc != nil {
				revoked, err := blacklistSvc.IsRevoked(c.Request().Context(), tokenString)
				if err != nil {
					if logger != nil {
						logger.Error("blacklist check failed, admitting request",
							zap.String("subject_id", claims.SubjectID),
							zap.Error(err))
					}
				} else if revoked {
					return echo.NewHTTPError(http.StatusUnauthorized, "Access token has been revoked")
				}
			}

			c.Set(SubjectIDKey, claims.SubjectID)
			c.Set(RoleKey, claims.Role)
			c.Set(ClaimsKey, claims)

			return next(c)
		}
	}
}

func GetSubjectID(c echo.Context) string {
	if subjectID, ok := c.Get(SubjectIDKey).(string); ok {
		return subjectID
	}
	return ""
}

func GetRole(c echo.Context) token.Role {
	if role, ok := c.Get(RoleKey).(token.Role); ok {
		return role
	}
	return ""
}

func GetClaims(c echo.Context) *token.Claims {
	if claims, ok := c.Get(ClaimsKey).(*token.Claims); ok {
		return claims
	}
	return nil
}
