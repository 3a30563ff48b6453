package blacklist

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/campuskit/tokenauth/config"
	"github.com/campuskit/tokenauth/services/logging"
	"go.uber.org/zap"
)

var ErrStoreNotConfigured = errors.New("blacklist store not configured")

// hashForLog keeps raw token material out of log output.
func hashForLog(tokenValue string) string {
	hash := sha256.Sum256([]byte(tokenValue))
	return fmt.Sprintf("%x", hash[:8])
}

// Service fronts the Store with logging and a config-bounded timeout on
// every cache call. Callers decide what a cache failure means; the
// gateway treats it as fail-open, the logout path surfaces it.
type Service struct {
	config *config.Config
	store  Store
	logger *logging.Service
}

func NewService(cfg *config.Config, store Store, logger *logging.Service) *Service {
	if logger != nil {
		logger.Info("initializing token blacklist service",
			zap.String("store_type", cfg.Blacklist.Store),
			zap.Duration("timeout", cfg.Blacklist.Timeout))
	}

	return &Service{
		config: cfg,
		store:  store,
		logger: logger,
	}
}

// Revoke blacklists the token for its remaining lifetime. A non-positive
// TTL is a no-op: an expired token is already unusable.
func (s *Service) Revoke(ctx context.Context, tokenValue string, ttl time.Duration) error {
	if s.store == nil {
		return ErrStoreNotConfigured
	}

	if ttl <= 0 {
		if s.logger != nil {
			s.logger.Debug("skipping blacklist of already-expired token",
				zap.String("token_hash", hashForLog(tokenValue)))
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Blacklist.Timeout)
	defer cancel()

	if err := s.store.Add(ctx, tokenValue, ttl); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to blacklist token",
				zap.String("token_hash", hashForLog(tokenValue)),
				zap.Error(err))
		}
		return err
	}

	if s.logger != nil {
		s.logger.Info("token blacklisted",
			zap.String("token_hash", hashForLog(tokenValue)),
			zap.Duration("ttl", ttl))
	}

	return nil
}

func (s *Service) IsRevoked(ctx context.Context, tokenValue string) (bool, error) {
	if s.store == nil {
		return false, ErrStoreNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Blacklist.Timeout)
	defer cancel()

	revoked, err := s.store.Contains(ctx, tokenValue)
	if err != nil {
		return false, err
	}

	return revoked, nil
}
