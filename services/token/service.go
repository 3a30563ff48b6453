package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/campuskit/tokenauth/config"
	"github.com/campuskit/tokenauth/services/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidToken     = errors.New("invalid access token")
	ErrExpiredToken     = errors.New("access token has expired")
	ErrMalformedToken   = errors.New("malformed access token")
	ErrInvalidSignature = errors.New("invalid access token signature")
)

// Role identifies the kind of principal a token was minted for.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleFaculty
}

// Claims is the stable wire format of the access token: subject id, role,
// issued-at and expiry, plus a JTI for log correlation.
type Claims struct {
	SubjectID string `json:"subject_id"`
	Role      Role   `json:"role"`
	JTI       string `json:"jti"`
	jwt.RegisteredClaims
}

// RemainingLifetime reports how long the token stays valid from now.
// Negative or zero means already expired.
func (c *Claims) RemainingLifetime() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return time.Until(c.ExpiresAt.Time)
}

type Service struct {
	config *config.Config
	logger *logging.Service
}

func NewService(cfg *config.Config, logger *logging.Service) *Service {
	return &Service{
		config: cfg,
		logger: logger,
	}
}

func (s *Service) AccessExpiry() time.Duration {
	return s.config.JWT.AccessExpiry
}

func (s *Service) Generate(subjectID string, role Role) (string, error) {
	now := time.Now()
	jti := uuid.New().String()
	claims := Claims{
		SubjectID: subjectID,
		Role:      role,
		JTI:       jti,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.config.JWT.Issuer,
			Subject:   subjectID,
			Audience:  []string{s.config.JWT.Issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.JWT.AccessExpiry)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.JWT.SecretKey))
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to sign access token", zap.Error(err))
		}
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return tokenString, nil
}

func (s *Service) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() == "none" {
			return nil, errors.New("'none' algorithm is not allowed")
		}

		if token.Method.Alg() != "HS256" {
			return nil, fmt.Errorf("unexpected algorithm: expected HS256, got %s", token.Method.Alg())
		}

		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid algorithm family: %v", token.Header["alg"])
		}

		return []byte(s.config.JWT.SecretKey), nil
	})

	if err != nil {
		if s.logger != nil {
			s.logger.Warn("access token validation failed", zap.Error(err))
		}

		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedToken
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.SubjectID == "" || !claims.Role.Valid() {
		if s.logger != nil {
			s.logger.Warn("access token carries incomplete claims",
				zap.String("jti", claims.JTI))
		}
		return nil, ErrInvalidToken
	}

	return claims, nil
}
