package domain

import "time"

// The reference deployment has no role storage; every login carries the
// same member role in its claims.
const (
	DefaultRoleID   = 1
	DefaultRoleName = "member"
)

// AccessClaims is the identity decoded from a verified access token.
// Immutable once signed; rebuilt fresh on every verification.
type AccessClaims struct {
	UserID    int64
	DeviceID  int64
	RoleID    int64
	RoleName  string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RefreshClaims is the narrower identity carried by a refresh token.
type RefreshClaims struct {
	UserID    int64
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
