package service

import (
	"context"
	"strings"
	"time"

	"github.com/neobrutal/account-system/internal/core/domain"
)

// stubAccountRepo is an in-memory AccountRepository for service tests.
type stubAccountRepo struct {
	nextID   int64
	accounts map[int64]*domain.Account

	bulkCalls   int
	lastBulkIDs []int64
	forcedErr   error
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[int64]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	if r.forcedErr != nil {
		return nil, r.forcedErr
	}
	for _, existing := range r.accounts {
		if existing.Username == account.Username || existing.Email == account.Email {
			return nil, domain.ErrAccountExists
		}
	}
	r.nextID++
	stored := cloneAccount(account)
	stored.ID = r.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.accounts[stored.ID] = stored
	return cloneAccount(stored), nil
}

func (r *stubAccountRepo) FindByID(_ context.Context, id int64) (*domain.Account, error) {
	if r.forcedErr != nil {
		return nil, r.forcedErr
	}
	if a, ok := r.accounts[id]; ok && a.DeletedAt == nil {
		return cloneAccount(a), nil
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	if r.forcedErr != nil {
		return nil, r.forcedErr
	}
	for _, a := range r.accounts {
		if a.Username == username && a.DeletedAt == nil {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	if r.forcedErr != nil {
		return nil, r.forcedErr
	}
	for _, a := range r.accounts {
		if a.Email == email && a.DeletedAt == nil {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) List(_ context.Context, _ domain.AccountFilter, p domain.Pagination) (*domain.Page, error) {
	data := make([]domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		if a.DeletedAt == nil {
			data = append(data, *cloneAccount(a))
		}
	}
	total := int64(len(data))
	return &domain.Page{
		Data:       data,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: domain.TotalPages(total, p.Limit),
	}, nil
}

func (r *stubAccountRepo) Update(_ context.Context, id int64, upd domain.AccountUpdate) (*domain.Account, error) {
	a, ok := r.accounts[id]
	if !ok || a.DeletedAt != nil {
		return nil, domain.ErrAccountNotFound
	}
	if upd.Email != nil {
		a.Email = *upd.Email
	}
	if upd.IsActive != nil {
		a.IsActive = *upd.IsActive
	}
	a.UpdatedAt = time.Now()
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) SoftDelete(_ context.Context, id int64) error {
	a, ok := r.accounts[id]
	if !ok || a.DeletedAt != nil {
		return domain.ErrAccountNotFound
	}
	now := time.Now()
	a.DeletedAt = &now
	return nil
}

func (r *stubAccountRepo) ChangePassword(_ context.Context, id int64, passwordHash string) error {
	a, ok := r.accounts[id]
	if !ok || a.DeletedAt != nil {
		return domain.ErrAccountNotFound
	}
	a.PasswordHash = passwordHash
	return nil
}

func (r *stubAccountRepo) Search(_ context.Context, keyword string, limit int) ([]domain.Account, error) {
	results := make([]domain.Account, 0)
	for _, a := range r.accounts {
		if a.DeletedAt != nil {
			continue
		}
		if strings.Contains(a.Username, keyword) || strings.Contains(a.Email, keyword) {
			results = append(results, *cloneAccount(a))
		}
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

func (r *stubAccountRepo) BulkUpdateStatus(_ context.Context, ids []int64, status domain.Status) (int64, error) {
	r.bulkCalls++
	r.lastBulkIDs = ids
	var affected int64
	for _, id := range ids {
		if a, ok := r.accounts[id]; ok && a.DeletedAt == nil {
			a.IsActive = status
			affected++
		}
	}
	return affected, nil
}

func (r *stubAccountRepo) Stats(_ context.Context) (*domain.AccountStats, error) {
	stats := &domain.AccountStats{}
	for _, a := range r.accounts {
		if a.DeletedAt != nil {
			continue
		}
		stats.TotalAccounts++
		switch a.IsActive {
		case domain.StatusActive:
			stats.ActiveAccounts++
		case domain.StatusInactive:
			stats.InactiveAccounts++
		case domain.StatusBlocked:
			stats.BlockedAccounts++
		}
	}
	return stats, nil
}
