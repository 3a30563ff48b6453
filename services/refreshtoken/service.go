package refreshtoken

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/campuskit/tokenauth/config"
	"github.com/campuskit/tokenauth/services/logging"
	"github.com/campuskit/tokenauth/services/token"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrTokenNotFound         = errors.New("refresh token not found")
	ErrTokenConsumed         = errors.New("refresh token already consumed")
	ErrTokenGenerationFailed = errors.New("failed to generate secure token")
)

// Store is the single source of truth for refresh-token state. No caller
// may cache revocation status outside of it.
type Store interface {
	Create(ctx context.Context, subjectID string, role token.Role, sessionInfo SessionInfo) (*TokenData, error)
	FindByValue(ctx context.Context, value string) (*RefreshToken, error)
	Consume(ctx context.Context, value string) error
	RevokeAllForSubject(ctx context.Context, subjectID string) (int64, error)
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logging.Service
	stop   chan struct{}
}

func NewService(db *gorm.DB, cfg *config.Config, logger *logging.Service) *Service {
	if logger != nil {
		logger.Info("initializing refresh token store",
			zap.Duration("token_expiry", cfg.RefreshToken.Expiry),
			zap.Int("token_length", cfg.RefreshToken.TokenLength),
			zap.Duration("cleanup_interval", cfg.RefreshToken.CleanupInterval))
	}

	return &Service{
		db:     db,
		config: cfg,
		logger: logger,
		stop:   make(chan struct{}),
	}
}

// Create generates a cryptographically random opaque value, persists its
// hash and hands the raw value back exactly once. A hash collision on the
// unique index triggers regeneration.
func (s *Service) Create(ctx context.Context, subjectID string, role token.Role, sessionInfo SessionInfo) (*TokenData, error) {
	deviceInfoJSON := ""
	if sessionInfo.DeviceInfo != nil {
		if jsonBytes, err := json.Marshal(sessionInfo.DeviceInfo); err == nil {
			deviceInfoJSON = string(jsonBytes)
		}
	}

	const maxAttempts = 3
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		value, err := s.generateSecureToken()
		if err != nil {
			if s.logger != nil {
				s.logger.Error("failed to generate secure refresh token", zap.Error(err))
			}
			return nil, ErrTokenGenerationFailed
		}

		tokenHash := hashToken(value)
		expiresAt := time.Now().Add(s.config.RefreshToken.Expiry)

		record := RefreshToken{
			SubjectID:  subjectID,
			Role:       role,
			TokenHash:  tokenHash,
			Revoked:    false,
			ExpiresAt:  expiresAt,
			DeviceInfo: deviceInfoJSON,
		}

		if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < maxAttempts {
				if s.logger != nil {
					s.logger.Warn("refresh token hash collision, regenerating",
						zap.Int("attempt", attempt))
				}
				continue
			}
			if s.logger != nil {
				s.logger.Error("failed to store refresh token", zap.Error(err))
			}
			return nil, fmt.Errorf("failed to store refresh token: %w", err)
		}

		if s.logger != nil {
			s.logger.Info("refresh token created",
				zap.String("subject_id", subjectID),
				zap.Uint("token_id", record.ID),
				zap.Time("expires_at", expiresAt))
		}

		return &TokenData{
			Value:     value,
			TokenID:   record.ID,
			Hash:      tokenHash,
			ExpiresAt: expiresAt,
		}, nil
	}

	return nil, ErrTokenGenerationFailed
}

func (s *Service) FindByValue(ctx context.Context, value string) (*RefreshToken, error) {
	tokenHash := hashToken(value)

	var record RefreshToken
	err := s.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		if s.logger != nil {
			s.logger.Error("refresh token lookup failed", zap.Error(err))
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &record, nil
}

// Consume flips Revoked false→true for the record holding this value.
// The guard condition in the WHERE clause makes the transition a
// compare-and-set: under concurrent calls with the same value, exactly
// one caller sees RowsAffected == 1 and everyone else gets
// ErrTokenConsumed.
func (s *Service) Consume(ctx context.Context, value string) error {
	tokenHash := hashToken(value)

	result := s.db.WithContext(ctx).
		Model(&RefreshToken{}).
		Where("token_hash = ? AND revoked = ?", tokenHash, false).
		Update("revoked", true)

	if result.Error != nil {
		if s.logger != nil {
			s.logger.Error("failed to consume refresh token", zap.Error(result.Error))
		}
		return fmt.Errorf("failed to consume refresh token: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrTokenConsumed
	}

	if s.logger != nil {
		s.logger.Info("refresh token consumed",
			zap.String("token_hash", tokenHash[:16]+"..."))
	}

	return nil
}

// RevokeAllForSubject marks every live token of the subject revoked. Used
// by logout and by the rotation reuse-detection branch.
func (s *Service) RevokeAllForSubject(ctx context.Context, subjectID string) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&RefreshToken{}).
		Where("subject_id = ? AND revoked = ?", subjectID, false).
		Update("revoked", true)

	if result.Error != nil {
		if s.logger != nil {
			s.logger.Error("failed to revoke subject refresh tokens",
				zap.String("subject_id", subjectID),
				zap.Error(result.Error))
		}
		return 0, fmt.Errorf("failed to revoke subject refresh tokens: %w", result.Error)
	}

	if s.logger != nil {
		s.logger.Info("revoked all refresh tokens for subject",
			zap.String("subject_id", subjectID),
			zap.Int64("count", result.RowsAffected))
	}

	return result.RowsAffected, nil
}

func (s *Service) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&RefreshToken{})

	if result.Error != nil {
		if s.logger != nil {
			s.logger.Error("failed to delete expired refresh tokens", zap.Error(result.Error))
		}
		return 0, fmt.Errorf("failed to delete expired tokens: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func (s *Service) CleanupExpiredTokens(ctx context.Context) error {
	deleted, err := s.DeleteExpiredBefore(ctx, time.Now())
	if err != nil {
		return err
	}

	if s.logger != nil {
		if deleted > 0 {
			s.logger.Info("cleaned up expired refresh tokens",
				zap.Int64("count", deleted))
		} else {
			s.logger.Debug("no expired refresh tokens to clean up")
		}
	}

	return nil
}

// StartCleanupWorker runs the expiry sweep on a fixed interval until
// StopCleanupWorker is called. Sweep failures are logged and retried on
// the next tick.
func (s *Service) StartCleanupWorker() {
	go func() {
		ticker := time.NewTicker(s.config.RefreshToken.CleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), s.config.RefreshToken.StoreTimeout)
				if err := s.CleanupExpiredTokens(ctx); err != nil && s.logger != nil {
					s.logger.Error("refresh token cleanup worker failed", zap.Error(err))
				}
				cancel()
			case <-s.stop:
				return
			}
		}
	}()

	if s.logger != nil {
		s.logger.Info("started refresh token cleanup worker",
			zap.Duration("interval", s.config.RefreshToken.CleanupInterval))
	}
}

func (s *Service) StopCleanupWorker() {
	close(s.stop)
}

func (s *Service) generateSecureToken() (string, error) {
	tokenBytes := make([]byte, s.config.RefreshToken.TokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(tokenBytes), nil
}

func hashToken(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:])
}
