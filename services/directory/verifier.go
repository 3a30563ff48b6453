package directory

import (
	"context"
	"errors"

	"github.com/campuskit/tokenauth/services/logging"
	"github.com/campuskit/tokenauth/services/token"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// VerifiedIdentity is the outcome of a successful credential check.
type VerifiedIdentity struct {
	SubjectID string
	Role      token.Role
}

// Verifier checks submitted credentials against the user directory.
type Verifier struct {
	directory Directory
	logger    *logging.Service
}

func NewVerifier(dir Directory, logger *logging.Service) *Verifier {
	return &Verifier{
		directory: dir,
		logger:    logger,
	}
}

// Verify resolves the identifier and compares the secret against the
// directory's bcrypt hash. bcrypt's comparison is constant-time, so
// mismatches leak no timing signal about the stored hash. Directory
// outages propagate as ErrUnavailable, never masked as a credential
// failure.
func (v *Verifier) Verify(ctx context.Context, identifier, secret string, kind PrincipalKind) (*VerifiedIdentity, error) {
	principal, err := v.directory.LookupPrincipal(ctx, identifier, kind)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			if v.logger != nil {
				v.logger.Warn("credential check failed: principal not found",
					zap.String("kind", string(kind)))
			}
			return nil, ErrPrincipalNotFound
		}
		if errors.Is(err, ErrUnknownPrincipalKind) {
			return nil, ErrUnknownPrincipalKind
		}
		if v.logger != nil {
			v.logger.Error("credential check failed: directory error", zap.Error(err))
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(principal.HashedSecret), []byte(secret)); err != nil {
		if v.logger != nil {
			v.logger.Warn("credential check failed: secret mismatch",
				zap.String("kind", string(kind)))
		}
		return nil, ErrInvalidCredentials
	}

	return &VerifiedIdentity{
		SubjectID: principal.ID,
		Role:      principal.Role,
	}, nil
}
