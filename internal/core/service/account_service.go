package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/neobrutal/account-system/internal/api/metrics"
	"github.com/neobrutal/account-system/internal/core/domain"
	"github.com/neobrutal/account-system/internal/core/ports"
)

const minSearchKeywordLen = 2

// AccountService enforces account lifecycle invariants on top of the
// repository: uniqueness before create, hashing before persistence,
// not-found semantics against soft-deleted rows, and current-password
// verification before a password change.
type AccountService struct {
	repo   ports.AccountRepository
	hasher ports.Hasher
	logger zerolog.Logger
}

func NewAccountService(repo ports.AccountRepository, hasher ports.Hasher, logger zerolog.Logger) *AccountService {
	return &AccountService{repo: repo, hasher: hasher, logger: logger}
}

func (s *AccountService) Create(ctx context.Context, input ports.CreateAccountInput) (*domain.Account, error) {
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, domain.ErrAccountExists
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}
	if _, err := s.repo.FindByUsername(ctx, input.Username); err == nil {
		return nil, domain.ErrAccountExists
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
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
	return created.WithoutHash(), nil
}

func (s *AccountService) Get(ctx context.Context, id int64) (*domain.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return account.WithoutHash(), nil
}

func (s *AccountService) List(ctx context.Context, filter domain.AccountFilter, p domain.Pagination) (*domain.Page, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, filter, p)
}

func (s *AccountService) Update(ctx context.Context, id int64, upd domain.AccountUpdate) (*domain.Account, error) {
	account, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	return account.WithoutHash(), nil
}

func (s *AccountService) Delete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

// ChangePassword verifies the current password against the stored hash
// before accepting the new one.
func (s *AccountService) ChangePassword(ctx context.Context, id int64, input ports.ChangePasswordInput) error {
	if input.CurrentPassword == "" || input.NewPassword == "" {
		return domain.ErrInvalidInput
	}

	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(input.CurrentPassword, account.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	if err := s.repo.ChangePassword(ctx, id, hash); err != nil {
		return err
	}
	s.logger.Info().Int64("account_id", id).Msg("password changed")
	return nil
}

func (s *AccountService) Search(ctx context.Context, keyword string, limit int) ([]domain.Account, error) {
	keyword = strings.TrimSpace(keyword)
	if len(keyword) < minSearchKeywordLen {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = 10
	}
	return s.repo.Search(ctx, keyword, limit)
}

// BulkUpdateStatus rejects an empty id set before any query is built.
func (s *AccountService) BulkUpdateStatus(ctx context.Context, ids []int64, status domain.Status) (int64, error) {
	if len(ids) == 0 {
		return 0, domain.ErrInvalidInput
	}
	affected, err := s.repo.BulkUpdateStatus(ctx, ids, status)
	if err != nil {
		return 0, err
	}
	metrics.BulkStatusUpdatesTotal.Add(float64(affected))
	return affected, nil
}

func (s *AccountService) Stats(ctx context.Context) (*domain.AccountStats, error) {
	return s.repo.Stats(ctx)
}

// Validate checks email/password credentials. The returned record never
// carries the stored hash.
func (s *AccountService) Validate(ctx context.Context, email, password string) (*domain.Account, error) {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	return account.WithoutHash(), nil
}
