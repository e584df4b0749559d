package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/neobrutal/account-system/internal/core/domain"
	"github.com/neobrutal/account-system/internal/core/ports"
)

const defaultTokenTTL = 30 * time.Minute

// TokenService issues and verifies HS256-signed access and refresh
// tokens. The signing secret and the clock are injected at construction;
// there is no process-wide state.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = defaultTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultTokenTTL
	}
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

type accessTokenClaims struct {
	UserID   int64  `json:"user_id"`
	DeviceID int64  `json:"device_id"`
	RoleID   int64  `json:"role_id"`
	RoleName string `json:"role_name"`
	jwt.RegisteredClaims
}

type refreshTokenClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// IssueAccess signs an access token for the given identity. A fresh
// unique token id is embedded on every call.
func (s *TokenService) IssueAccess(input ports.AccessTokenInput) (string, error) {
	now := s.now().UTC()
	claims := accessTokenClaims{
		UserID:   input.UserID,
		DeviceID: input.DeviceID,
		RoleID:   input.RoleID,
		RoleName: input.RoleName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	return s.sign(claims)
}

// IssueRefresh signs a refresh token carrying only the subject identity.
func (s *TokenService) IssueRefresh(userID int64) (string, error) {
	now := s.now().UTC()
	claims := refreshTokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	}
	return s.sign(claims)
}

// IssuePair signs both tokens for a login. The two signings are
// independent but the result is atomic: a failure in either returns no
// token at all.
func (s *TokenService) IssuePair(input ports.AccessTokenInput) (*ports.TokenPair, error) {
	access, err := s.IssueAccess(input)
	if err != nil {
		return nil, err
	}
	refresh, err := s.IssueRefresh(input.UserID)
	if err != nil {
		return nil, err
	}
	return &ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess checks signature, algorithm and expiry, and rebuilds the
// claims. Any failure surfaces as domain.ErrInvalidToken.
func (s *TokenService) VerifyAccess(token string) (*domain.AccessClaims, error) {
	claims := &accessTokenClaims{}
	if err := s.parse(token, claims); err != nil {
		return nil, err
	}
	return &domain.AccessClaims{
		UserID:    claims.UserID,
		DeviceID:  claims.DeviceID,
		RoleID:    claims.RoleID,
		RoleName:  claims.RoleName,
		TokenID:   claims.ID,
		IssuedAt:  numericTime(claims.IssuedAt),
		ExpiresAt: numericTime(claims.ExpiresAt),
	}, nil
}

// VerifyRefresh is the refresh-token counterpart of VerifyAccess.
func (s *TokenService) VerifyRefresh(token string) (*domain.RefreshClaims, error) {
	claims := &refreshTokenClaims{}
	if err := s.parse(token, claims); err != nil {
		return nil, err
	}
	return &domain.RefreshClaims{
		UserID:    claims.UserID,
		TokenID:   claims.ID,
		IssuedAt:  numericTime(claims.IssuedAt),
		ExpiresAt: numericTime(claims.ExpiresAt),
	}, nil
}

func numericTime(d *jwt.NumericDate) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}

func (s *TokenService) sign(claims jwt.Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}
	return signed, nil
}

func (s *TokenService) parse(token string, claims jwt.Claims) error {
	tkn, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return domain.ErrInvalidToken
	}
	return nil
}
