package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/neobrutal/account-system/internal/api/metrics"
	"github.com/neobrutal/account-system/internal/core/domain"
)

// uniqueViolationCode is the Postgres error code raised when an insert
// hits one of the partial unique indexes on username/email.
const uniqueViolationCode = "23505"

const accountColumns = "id, username, email, password_hash, is_active, created_at, updated_at"

// Querier is the query-execution capability the repository runs on.
// Every statement goes through it with values bound as parameters; no
// caller-supplied value ever reaches the query text. *pgxpool.Pool
// satisfies it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// AccountRepository implements ports.AccountRepository against Postgres.
type AccountRepository struct {
	db Querier
}

func NewAccountRepository(db Querier) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account row. A unique-index violation maps to
// domain.ErrAccountExists so concurrent creates of the same username
// degrade to the same conflict the service-level pre-check reports.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	defer observe("create")()

	query := `
		INSERT INTO account (username, email, password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING id, created_at, updated_at`

	created := *account
	err := r.db.QueryRow(ctx, query, account.Username, account.Email, account.PasswordHash, account.IsActive).
		Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return &created, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.findOne(ctx, "username = $1", username)
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, "email = $1", email)
}

func (r *AccountRepository) findOne(ctx context.Context, where string, arg any) (*domain.Account, error) {
	query := "SELECT " + accountColumns + " FROM account WHERE " + where + " AND deleted_at IS NULL"
	account, err := scanAccount(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return account, nil
}

// List runs the count and page queries produced by buildListQuery and
// combines them into a page result.
func (r *AccountRepository) List(ctx context.Context, filter domain.AccountFilter, p domain.Pagination) (*domain.Page, error) {
	defer observe("list")()

	countSQL, pageSQL, countArgs, pageArgs, err := buildListQuery(filter, p)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count accounts: %w", err)
	}

	rows, err := r.db.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	data, err := scanAccounts(rows)
	if err != nil {
		return nil, err
	}

	return &domain.Page{
		Data:       data,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: domain.TotalPages(total, p.Limit),
	}, nil
}

// Update applies a partial update. With no fields present it degrades
// to a lookup, mirroring the reference behavior.
func (r *AccountRepository) Update(ctx context.Context, id int64, upd domain.AccountUpdate) (*domain.Account, error) {
	defer observe("update")()

	fields := make([]string, 0, 3)
	args := make([]any, 0, 3)

	if upd.Email != nil {
		args = append(args, *upd.Email)
		fields = append(fields, fmt.Sprintf("email = $%d", len(args)))
	}
	if upd.IsActive != nil {
		args = append(args, *upd.IsActive)
		fields = append(fields, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if len(fields) == 0 {
		return r.FindByID(ctx, id)
	}

	fields = append(fields, "updated_at = now()")
	args = append(args, id)
	query := fmt.Sprintf("UPDATE account SET %s WHERE id = $%d AND deleted_at IS NULL",
		strings.Join(fields, ", "), len(args))

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrAccountNotFound
	}

	return r.FindByID(ctx, id)
}

// SoftDelete stamps deleted_at; the row never leaves the table.
func (r *AccountRepository) SoftDelete(ctx context.Context, id int64) error {
	defer observe("soft_delete")()

	tag, err := r.db.Exec(ctx,
		"UPDATE account SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return fmt.Errorf("soft delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) ChangePassword(ctx context.Context, id int64, passwordHash string) error {
	defer observe("change_password")()

	tag, err := r.db.Exec(ctx,
		"UPDATE account SET password_hash = $1, updated_at = now() WHERE id = $2 AND deleted_at IS NULL",
		passwordHash, id)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// Search returns accounts matching the keyword, ranked by tier: exact
// username prefix, then email prefix, then any substring match, with an
// alphabetical tie-break on username.
func (r *AccountRepository) Search(ctx context.Context, keyword string, limit int) ([]domain.Account, error) {
	defer observe("search")()

	query, args := buildSearchQuery(keyword, limit)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search accounts: %w", err)
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// BulkUpdateStatus applies one status to every live row in ids with a
// single statement and reports the affected count.
func (r *AccountRepository) BulkUpdateStatus(ctx context.Context, ids []int64, status domain.Status) (int64, error) {
	defer observe("bulk_update_status")()

	query, args, err := buildBulkStatusQuery(ids, status)
	if err != nil {
		return 0, err
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk update status: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *AccountRepository) Stats(ctx context.Context) (*domain.AccountStats, error) {
	defer observe("stats")()

	query := `
		SELECT
			count(*) AS total_accounts,
			count(*) FILTER (WHERE is_active = 1) AS active_accounts,
			count(*) FILTER (WHERE is_active = 0) AS inactive_accounts,
			count(*) FILTER (WHERE is_active = 2) AS blocked_accounts,
			count(*) FILTER (WHERE created_at >= date_trunc('day', now())) AS new_accounts_today,
			count(*) FILTER (WHERE created_at >= now() - interval '7 days') AS new_accounts_this_week
		FROM account
		WHERE deleted_at IS NULL`

	var stats domain.AccountStats
	err := r.db.QueryRow(ctx, query).Scan(
		&stats.TotalAccounts,
		&stats.ActiveAccounts,
		&stats.InactiveAccounts,
		&stats.BlockedAccounts,
		&stats.NewToday,
		&stats.NewThisWeek,
	)
	if err != nil {
		return nil, fmt.Errorf("account stats: %w", err)
	}
	return &stats, nil
}

// --- Query construction ---

// buildListQuery turns a filter and pagination options into a count
// query and a page query sharing one predicate list. The predicate list
// is seeded with the soft-delete exclusion; every present filter field
// appends a condition with its value bound as a parameter. The sort
// column must come from the allow-list; anything else is rejected
// before any query text is assembled.
func buildListQuery(f domain.AccountFilter, p domain.Pagination) (countSQL, pageSQL string, countArgs, pageArgs []any, err error) {
	if !domain.ValidSortColumn(p.SortBy) {
		return "", "", nil, nil, domain.ErrInvalidInput
	}
	if p.SortOrder != domain.SortAsc && p.SortOrder != domain.SortDesc {
		return "", "", nil, nil, domain.ErrInvalidInput
	}
	if p.Page < 1 || p.Limit < 1 {
		return "", "", nil, nil, domain.ErrInvalidInput
	}

	conds := []string{"deleted_at IS NULL"}
	args := []any{}

	if f.IsActive != nil {
		args = append(args, *f.IsActive)
		conds = append(conds, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if f.Email != "" {
		args = append(args, "%"+f.Email+"%")
		conds = append(conds, fmt.Sprintf("email ILIKE $%d", len(args)))
	}
	if f.Username != "" {
		args = append(args, "%"+f.Username+"%")
		conds = append(conds, fmt.Sprintf("username ILIKE $%d", len(args)))
	}
	if f.CreatedFrom != nil {
		args = append(args, *f.CreatedFrom)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if f.CreatedTo != nil {
		args = append(args, *f.CreatedTo)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	whereClause := "WHERE " + strings.Join(conds, " AND ")

	countSQL = "SELECT count(*) FROM account " + whereClause
	countArgs = args

	pageArgs = append(append([]any{}, args...), p.Limit, p.Offset())
	pageSQL = fmt.Sprintf("SELECT %s FROM account %s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		accountColumns, whereClause, p.SortBy, p.SortOrder, len(args)+1, len(args)+2)

	return countSQL, pageSQL, countArgs, pageArgs, nil
}

// buildSearchQuery ranks matches by tier via a computed ordering
// expression: username prefix beats email prefix beats plain substring.
// Both the substring and prefix patterns are bound, never interpolated.
func buildSearchQuery(keyword string, limit int) (string, []any) {
	query := "SELECT " + accountColumns + ` FROM account
		WHERE (username ILIKE $1 OR email ILIKE $1) AND deleted_at IS NULL
		ORDER BY
			CASE
				WHEN username ILIKE $2 THEN 1
				WHEN email ILIKE $2 THEN 2
				ELSE 3
			END,
			username ASC
		LIMIT $3`

	return query, []any{"%" + keyword + "%", keyword + "%", limit}
}

// buildBulkStatusQuery binds every id as its own parameter inside an IN
// list. An empty id set is rejected here as well as in the service; a
// zero-id IN clause must never execute.
func buildBulkStatusQuery(ids []int64, status domain.Status) (string, []any, error) {
	if len(ids) == 0 {
		return "", nil, domain.ErrInvalidInput
	}

	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+1)
	args = append(args, status)
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}

	query := fmt.Sprintf(
		"UPDATE account SET is_active = $1, updated_at = now() WHERE id IN (%s) AND deleted_at IS NULL",
		strings.Join(placeholders, ", "))

	return query, args, nil
}

// --- Row scanning ---

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	var isActive int16
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &isActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.IsActive = domain.Status(isActive)
	return &a, nil
}

func scanAccounts(rows pgx.Rows) ([]domain.Account, error) {
	accounts := make([]domain.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func observe(operation string) func() {
	timer := prometheus.NewTimer(metrics.QueryDurationSeconds.WithLabelValues(operation))
	return func() { timer.ObserveDuration() }
}
