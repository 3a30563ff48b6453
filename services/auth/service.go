package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campuskit/tokenauth/config"
	"github.com/campuskit/tokenauth/services/blacklist"
	"github.com/campuskit/tokenauth/services/directory"
	"github.com/campuskit/tokenauth/services/logging"
	"github.com/campuskit/tokenauth/services/refreshtoken"
	"github.com/campuskit/tokenauth/services/token"
	"go.uber.org/zap"
)

// ErrInvalidToken deliberately covers malformed, expired, revoked and
// reused-refresh cases so a caller cannot probe which condition applied.
var ErrInvalidToken = errors.New("invalid token")

const bearerPrefix = "Bearer "

// TokenPair is the result of login and refresh: a short-lived signed
// access token and a long-lived single-use refresh value.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	SubjectID    string `json:"subject_id"`
	ExpiresIn    int    `json:"expires_in"`
}

type Service struct {
	config    *config.Config
	verifier  *directory.Verifier
	codec     *token.Service
	store     refreshtoken.Store
	blacklist *blacklist.Service
	logger    *logging.Service
}

func NewService(cfg *config.Config, verifier *directory.Verifier, codec *token.Service, store refreshtoken.Store, blacklistSvc *blacklist.Service, logger *logging.Service) *Service {
	return &Service{
		config:    cfg,
		verifier:  verifier,
		codec:     codec,
		store:     store,
		blacklist: blacklistSvc,
		logger:    logger,
	}
}

// Login verifies the submitted credentials and issues a token pair.
// Verifier errors pass through untouched so the transport layer can
// collapse them into a generic rejection.
func (s *Service) Login(ctx context.Context, identifier, secret string, kind directory.PrincipalKind, sessionInfo refreshtoken.SessionInfo) (*TokenPair, error) {
	identity, err := s.verifier.Verify(ctx, identifier, secret, kind)
	if err != nil {
		return nil, err
	}

	pair, err := s.issue(ctx, identity.SubjectID, identity.Role, sessionInfo)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("login succeeded",
			zap.String("subject_id", identity.SubjectID),
			zap.String("role", string(identity.Role)))
	}

	return pair, nil
}

// Refresh redeems a refresh token for a new pair. Each value is
// redeemable at most once: the store's conditional update decides the
// winner under concurrent calls. Presenting an already-consumed value is
// treated as theft evidence and revokes every outstanding token of the
// subject.
func (s *Service) Refresh(ctx context.Context, presentedValue string) (*TokenPair, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.config.RefreshToken.StoreTimeout)
	defer cancel()

	record, err := s.store.FindByValue(storeCtx, presentedValue)
	if err != nil {
		if errors.Is(err, refreshtoken.ErrTokenNotFound) {
			return nil, ErrInvalidToken
		}
		// A store failure here must not be retried: a retry after an
		// ambiguous outcome could double-issue pairs. The client has to
		// re-authenticate instead.
		if s.logger != nil {
			s.logger.Error("refresh store lookup failed", zap.Error(err))
		}
		return nil, ErrInvalidToken
	}

	if record.Revoked {
		if s.logger != nil {
			s.logger.Warn("refresh token reuse detected, revoking all subject tokens",
				zap.String("subject_id", record.SubjectID),
				zap.Uint("token_id", record.ID))
		}
		if _, err := s.store.RevokeAllForSubject(storeCtx, record.SubjectID); err != nil && s.logger != nil {
			s.logger.Error("failed to revoke subject tokens after reuse",
				zap.String("subject_id", record.SubjectID),
				zap.Error(err))
		}
		return nil, ErrInvalidToken
	}

	if !record.Usable(time.Now()) {
		return nil, ErrInvalidToken
	}

	if err := s.store.Consume(storeCtx, presentedValue); err != nil {
		if !errors.Is(err, refreshtoken.ErrTokenConsumed) && s.logger != nil {
			s.logger.Error("refresh token consume failed", zap.Error(err))
		}
		return nil, ErrInvalidToken
	}

	sessionInfo := refreshtoken.SessionInfo{}
	if record.DeviceInfo != "" {
		var deviceInfo map[string]any
		if err := json.Unmarshal([]byte(record.DeviceInfo), &deviceInfo); err == nil {
			sessionInfo.DeviceInfo = deviceInfo
		}
	}

	pair, err := s.issue(ctx, record.SubjectID, record.Role, sessionInfo)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("refresh token rotated",
			zap.String("subject_id", record.SubjectID),
			zap.Uint("old_token_id", record.ID))
	}

	return pair, nil
}

// Logout blacklists the presented access token for its remaining
// lifetime and revokes the subject's refresh tokens. It is idempotent:
// an already-revoked or absent refresh token is still a success.
// Blacklist or store connectivity failures are surfaced, not swallowed.
func (s *Service) Logout(ctx context.Context, bearerHeaderValue string) error {
	if !strings.HasPrefix(bearerHeaderValue, bearerPrefix) {
		return ErrInvalidToken
	}
	tokenString := strings.TrimPrefix(bearerHeaderValue, bearerPrefix)
	if tokenString == "" {
		return ErrInvalidToken
	}

	claims, err := s.codec.Validate(tokenString)
	if err != nil {
		return ErrInvalidToken
	}

	if err := s.blacklist.Revoke(ctx, tokenString, claims.RemainingLifetime()); err != nil {
		return fmt.Errorf("failed to blacklist access token: %w", err)
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.config.RefreshToken.StoreTimeout)
	defer cancel()

	if _, err := s.store.RevokeAllForSubject(storeCtx, claims.SubjectID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("logout completed",
			zap.String("subject_id", claims.SubjectID))
	}

	return nil
}

func (s *Service) issue(ctx context.Context, subjectID string, role token.Role, sessionInfo refreshtoken.SessionInfo) (*TokenPair, error) {
	accessToken, err := s.codec.Generate(subjectID, role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.config.RefreshToken.StoreTimeout)
	defer cancel()

	refreshData, err := s.store.Create(storeCtx, subjectID, role, sessionInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshData.Value,
		SubjectID:    subjectID,
		ExpiresIn:    int(s.codec.AccessExpiry().Seconds()),
	}, nil
}
