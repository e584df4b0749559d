package ports

import (
	"context"

	"github.com/neobrutal/account-system/internal/core/domain"
)

type CreateAccountInput struct {
	Username string
	Email    string
	Password string
}

type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// AccountService orchestrates account lifecycle operations, enforcing
// uniqueness, soft-delete and credential invariants on top of the
// repository.
type AccountService interface {
	Create(ctx context.Context, input CreateAccountInput) (*domain.Account, error)
	Get(ctx context.Context, id int64) (*domain.Account, error)
	List(ctx context.Context, filter domain.AccountFilter, p domain.Pagination) (*domain.Page, error)
	Update(ctx context.Context, id int64, upd domain.AccountUpdate) (*domain.Account, error)
	Delete(ctx context.Context, id int64) error
	ChangePassword(ctx context.Context, id int64, input ChangePasswordInput) error
	Search(ctx context.Context, keyword string, limit int) ([]domain.Account, error)
	BulkUpdateStatus(ctx context.Context, ids []int64, status domain.Status) (int64, error)
	Stats(ctx context.Context) (*domain.AccountStats, error)
	// Validate checks email/password credentials and returns the matching
	// account with the stored hash stripped.
	Validate(ctx context.Context, email, password string) (*domain.Account, error)
}
