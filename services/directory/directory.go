package directory

import (
	"context"
	"errors"

	"github.com/campuskit/tokenauth/services/token"
)

var (
	ErrPrincipalNotFound    = errors.New("principal not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUnknownPrincipalKind = errors.New("unknown principal kind")
	ErrUnavailable          = errors.New("user directory unavailable")
)

// PrincipalKind selects which directory collection an identifier is
// resolved against.
type PrincipalKind string

const (
	KindStudent PrincipalKind = "student"
	KindFaculty PrincipalKind = "faculty"
)

func (k PrincipalKind) Valid() bool {
	return k == KindStudent || k == KindFaculty
}

// Principal is the directory's view of a user: identity, the bcrypt hash
// of their secret, and the role claim the token core carries.
type Principal struct {
	ID           string     `json:"id"`
	HashedSecret string     `json:"hashed_secret"`
	Role         token.Role `json:"role"`
}

// Directory is the external user-directory collaborator. Lookup failures
// other than a missing principal must map to ErrUnavailable so callers
// can distinguish outage from rejection.
type Directory interface {
	LookupPrincipal(ctx context.Context, identifier string, kind PrincipalKind) (*Principal, error)
}
