package ports

import (
	"context"

	"github.com/neobrutal/account-system/internal/core/domain"
)

// AccountRepository defines the interface for account persistence. All
// implementations must exclude soft-deleted rows from every read and
// mutation path, and must bind every caller-supplied value as a query
// parameter.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context, filter domain.AccountFilter, p domain.Pagination) (*domain.Page, error)
	Update(ctx context.Context, id int64, upd domain.AccountUpdate) (*domain.Account, error)
	SoftDelete(ctx context.Context, id int64) error
	ChangePassword(ctx context.Context, id int64, passwordHash string) error
	Search(ctx context.Context, keyword string, limit int) ([]domain.Account, error)
	BulkUpdateStatus(ctx context.Context, ids []int64, status domain.Status) (int64, error)
	Stats(ctx context.Context) (*domain.AccountStats, error)
}
