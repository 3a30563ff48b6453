package handlers

import (
	"net/http"

	tokenauthmw "github.com/campuskit/tokenauth/middleware/tokenauth"
	"github.com/labstack/echo/v4"
)

type MeResponse struct {
	SubjectID string `json:"subject_id"`
	Role      string `json:"role"`
	ExpiresAt int64  `json:"expires_at"`
}

// Me echoes the admitted principal's claims back; it exists mainly as
// the canonical protected route behind the admission middleware.
func (h *AuthHandler) Me(c echo.Context) error {
	claims := tokenauthmw.GetClaims(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, genericAuthFailure)
	}

	resp := MeResponse{
		SubjectID: claims.SubjectID,
		Role:      string(claims.Role),
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Unix()
	}

	return c.JSON(http.StatusOK, resp)
}
