package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/neobrutal/account-system/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type createAccountRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type updateAccountRequest struct {
	Email    *string `json:"email,omitempty"     validate:"omitempty,email"`
	IsActive *string `json:"is_active,omitempty" validate:"omitempty,oneof=active inactive blocked"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8"`
}

type bulkStatusRequest struct {
	IDs    []int64 `json:"ids"    validate:"required,min=1"`
	Status string  `json:"status" validate:"required,oneof=active inactive blocked"`
}

type validateAccountRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type bulkStatusResponse struct {
	Affected int64 `json:"affected"`
}

type validateAccountResponse struct {
	Valid   bool            `json:"valid"`
	Account *domain.Account `json:"account,omitempty"`
	Message string          `json:"message,omitempty"`
}

// --- Query parameter parsing ---

// listParams decodes the listing query string, applying the same
// defaults the reference API uses: page 1, limit 10, newest first.
func listParams(c echo.Context) (domain.AccountFilter, domain.Pagination, error) {
	var filter domain.AccountFilter

	if raw := c.QueryParam("is_active"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return filter, domain.Pagination{}, err
		}
		filter.IsActive = &status
	}
	filter.Email = c.QueryParam("email")
	filter.Username = c.QueryParam("username")

	if raw := c.QueryParam("created_from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, domain.Pagination{}, domain.ErrInvalidInput
		}
		filter.CreatedFrom = &t
	}
	if raw := c.QueryParam("created_to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, domain.Pagination{}, domain.ErrInvalidInput
		}
		filter.CreatedTo = &t
	}

	p := domain.Pagination{
		Page:      intParam(c, "page", 1),
		Limit:     intParam(c, "limit", 10),
		SortBy:    "created_at",
		SortOrder: domain.SortDesc,
	}
	if raw := c.QueryParam("sort_by"); raw != "" {
		p.SortBy = raw
	}
	if raw := c.QueryParam("sort_order"); raw != "" {
		switch raw {
		case "ASC", "asc":
			p.SortOrder = domain.SortAsc
		case "DESC", "desc":
			p.SortOrder = domain.SortDesc
		default:
			return filter, p, domain.ErrInvalidInput
		}
	}

	return filter, p, nil
}

func intParam(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
