package ports

import "github.com/neobrutal/account-system/internal/core/domain"

// AccessTokenInput is the identity embedded into a new access token.
// The unique token id and both timestamps are added at signing time.
type AccessTokenInput struct {
	UserID   int64
	DeviceID int64
	RoleID   int64
	RoleName string
}

// TokenPair is the atomic response of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenService issues and verifies signed, time-limited tokens.
type TokenService interface {
	IssueAccess(input AccessTokenInput) (string, error)
	IssueRefresh(userID int64) (string, error)
	// IssuePair signs an access and a refresh token as one atomic
	// operation: if either signing fails no token is returned.
	IssuePair(input AccessTokenInput) (*TokenPair, error)
	VerifyAccess(token string) (*domain.AccessClaims, error)
	VerifyRefresh(token string) (*domain.RefreshClaims, error)
}
