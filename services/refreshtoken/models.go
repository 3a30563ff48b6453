package refreshtoken

import (
	"time"

	"github.com/campuskit/tokenauth/services/token"
)

// Audit carries the shared record timestamps. gorm fills both on create
// and bumps UpdatedAt on every mutation.
type Audit struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RefreshToken is the durable record of one opaque refresh credential.
// Only the sha256 hash of the value is stored. Revoked moves false→true
// exactly once and is never reset; expired rows are removed by the
// cleanup worker rather than mutated.
type RefreshToken struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	SubjectID  string     `json:"subject_id" gorm:"size:36;not null;index"`
	Role       token.Role `json:"role" gorm:"size:16;not null"`
	TokenHash  string     `json:"-" gorm:"uniqueIndex;size:64;not null"`
	Revoked    bool       `json:"revoked" gorm:"not null;default:false"`
	ExpiresAt  time.Time  `json:"expires_at" gorm:"not null;index"`
	DeviceInfo string     `json:"device_info" gorm:"size:500"`
	Audit
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// Usable reports whether the record may still be redeemed for a new pair.
func (r *RefreshToken) Usable(now time.Time) bool {
	return !r.Revoked && now.Before(r.ExpiresAt)
}

type SessionInfo struct {
	IPAddress  string
	UserAgent  string
	DeviceInfo map[string]any
}

// TokenData is returned on creation; Value is the only place the raw
// secret ever appears.
type TokenData struct {
	Value     string
	TokenID   uint
	Hash      string
	ExpiresAt time.Time
}
