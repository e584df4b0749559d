package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/neobrutal/account-system/internal/api/metrics"
	"github.com/neobrutal/account-system/internal/core/domain"
	"github.com/neobrutal/account-system/internal/core/ports"
)

// AuthService implements registration, login and token refresh.
type AuthService struct {
	repo   ports.AccountRepository
	hasher ports.Hasher
	tokens ports.TokenService
	logger zerolog.Logger
}

func NewAuthService(repo ports.AccountRepository, hasher ports.Hasher, tokens ports.TokenService, logger zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens, logger: logger}
}

// Register creates a new account after checking that no live account
// holds the same username or email. The returned record carries no
// password hash.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.Account, error) {
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	if err := s.checkUnique(ctx, input.Username, input.Email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &domain.Account{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		IsActive:     domain.StatusActive,
	})
	if err != nil {
		return nil, err
	}

	metrics.AccountsCreatedTotal.Inc()
	s.logger.Info().Int64("account_id", created.ID).Str("username", created.Username).Msg("account registered")
	return created.WithoutHash(), nil
}

// Login verifies credentials and issues an access/refresh token pair.
func (s *AuthService) Login(ctx context.Context, input ports.LoginInput) (*ports.TokenPair, error) {
	if input.Username == "" || input.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	account, err := s.repo.FindByUsername(ctx, input.Username)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("not_found").Inc()
		return nil, err
	}

	ok, err := s.hasher.Verify(input.Password, account.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.LoginsTotal.WithLabelValues("invalid_password").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	pair, err := s.issuePair(account.ID, input.DeviceID)
	if err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.logger.Info().Int64("account_id", account.ID).Int64("device_id", input.DeviceID).Msg("login succeeded")
	return pair, nil
}

// Refresh verifies a refresh token and issues a fresh pair for the
// subject, provided the account still exists and is not soft-deleted.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	account, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}

	return s.issuePair(account.ID, 0)
}

func (s *AuthService) issuePair(accountID, deviceID int64) (*ports.TokenPair, error) {
	pair, err := s.tokens.IssuePair(ports.AccessTokenInput{
		UserID:   accountID,
		DeviceID: deviceID,
		RoleID:   domain.DefaultRoleID,
		RoleName: domain.DefaultRoleName,
	})
	if err != nil {
		return nil, err
	}
	metrics.TokensIssuedTotal.WithLabelValues("access").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("refresh").Inc()
	return pair, nil
}

func (s *AuthService) checkUnique(ctx context.Context, username, email string) error {
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return domain.ErrAccountExists
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return err
	}
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return domain.ErrAccountExists
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return err
	}
	return nil
}
