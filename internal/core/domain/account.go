package domain

import (
	"math"
	"time"
)

// Status is the activation state of an account.
type Status int16

const (
	StatusInactive Status = 0
	StatusActive   Status = 1
	StatusBlocked  Status = 2
)

// ParseStatus converts the wire representation used by the bulk-status
// endpoint ("active", "inactive", "blocked") into a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "active":
		return StatusActive, nil
	case "inactive":
		return StatusInactive, nil
	case "blocked":
		return StatusBlocked, nil
	default:
		return 0, ErrInvalidInput
	}
}

// Account is the core aggregate root. The password hash is never
// serialized; callers that must not see it go through WithoutHash.
type Account struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	IsActive     Status     `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"`
}

// WithoutHash returns a copy of the account with the stored password
// hash stripped.
func (a *Account) WithoutHash() *Account {
	if a == nil {
		return nil
	}
	clone := *a
	clone.PasswordHash = ""
	return &clone
}

// AccountFilter narrows a listing. Every present field is combined by
// logical AND with the implicit "not soft-deleted" predicate. The set
// of fields is closed on purpose: the query builder enumerates them
// exhaustively and nothing else may reach the query text.
type AccountFilter struct {
	IsActive    *Status
	Email       string
	Username    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// SortOrder is the direction of the ORDER BY clause.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// sortColumns is the allow-list of columns a caller may order by.
// Anything outside this set is rejected before query construction.
var sortColumns = map[string]struct{}{
	"id":         {},
	"username":   {},
	"email":      {},
	"is_active":  {},
	"created_at": {},
	"updated_at": {},
}

// ValidSortColumn reports whether col may appear in an ORDER BY clause.
func ValidSortColumn(col string) bool {
	_, ok := sortColumns[col]
	return ok
}

// Pagination describes the requested window and ordering of a listing.
type Pagination struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder SortOrder
}

// Offset is the number of rows skipped before the requested page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Validate rejects windows and orderings the repository must not see.
func (p Pagination) Validate() error {
	if p.Page < 1 || p.Limit < 1 {
		return ErrInvalidInput
	}
	if !ValidSortColumn(p.SortBy) {
		return ErrInvalidInput
	}
	if p.SortOrder != SortAsc && p.SortOrder != SortDesc {
		return ErrInvalidInput
	}
	return nil
}

// Page is a bounded slice of a larger result set plus count metadata.
type Page struct {
	Data       []Account `json:"data"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int64     `json:"total_pages"`
}

// TotalPages computes ceil(total/limit). A non-positive limit yields 0;
// the repository never produces one because Pagination.Validate runs
// first.
func TotalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return int64(math.Ceil(float64(total) / float64(limit)))
}

// AccountUpdate carries the mutable fields of a partial update. Nil
// fields are left untouched.
type AccountUpdate struct {
	Email    *string
	IsActive *Status
}

// AccountStats aggregates account counts for the stats endpoint.
type AccountStats struct {
	TotalAccounts    int64 `json:"total_accounts"`
	ActiveAccounts   int64 `json:"active_accounts"`
	InactiveAccounts int64 `json:"inactive_accounts"`
	BlockedAccounts  int64 `json:"blocked_accounts"`
	NewToday         int64 `json:"new_accounts_today"`
	NewThisWeek      int64 `json:"new_accounts_this_week"`
}
