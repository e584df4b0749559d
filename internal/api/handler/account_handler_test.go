package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/neobrutal/account-system/internal/api/middleware"
	"github.com/neobrutal/account-system/internal/core/domain"
	"github.com/neobrutal/account-system/internal/core/ports"
)

type stubAccountService struct {
	account  *domain.Account
	page     *domain.Page
	accounts []domain.Account
	stats    *domain.AccountStats
	affected int64
	err      error

	lastFilter     domain.AccountFilter
	lastPagination domain.Pagination
	lastKeyword    string
	lastIDs        []int64
	lastStatus     domain.Status
}

func (s *stubAccountService) Create(_ context.Context, _ ports.CreateAccountInput) (*domain.Account, error) {
	return s.account, s.err
}

func (s *stubAccountService) Get(_ context.Context, _ int64) (*domain.Account, error) {
	return s.account, s.err
}

func (s *stubAccountService) List(_ context.Context, filter domain.AccountFilter, p domain.Pagination) (*domain.Page, error) {
	s.lastFilter = filter
	s.lastPagination = p
	return s.page, s.err
}

func (s *stubAccountService) Update(_ context.Context, _ int64, _ domain.AccountUpdate) (*domain.Account, error) {
	return s.account, s.err
}

func (s *stubAccountService) Delete(_ context.Context, _ int64) error {
	return s.err
}

func (s *stubAccountService) ChangePassword(_ context.Context, _ int64, _ ports.ChangePasswordInput) error {
	return s.err
}

func (s *stubAccountService) Search(_ context.Context, keyword string, _ int) ([]domain.Account, error) {
	s.lastKeyword = keyword
	return s.accounts, s.err
}

func (s *stubAccountService) BulkUpdateStatus(_ context.Context, ids []int64, status domain.Status) (int64, error) {
	s.lastIDs = ids
	s.lastStatus = status
	return s.affected, s.err
}

func (s *stubAccountService) Stats(_ context.Context) (*domain.AccountStats, error) {
	return s.stats, s.err
}

func (s *stubAccountService) Validate(_ context.Context, _, _ string) (*domain.Account, error) {
	return s.account, s.err
}

// withClaims injects a verified identity the way the guard would.
func withClaims(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(middleware.ContextKeyClaims, &domain.AccessClaims{UserID: 1, RoleName: domain.DefaultRoleName})
		return next(c)
	}
}

func getRequest(e *echo.Echo, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestAccountHandler_Get(t *testing.T) {
	svc := &stubAccountService{account: &domain.Account{ID: 7, Username: "alice"}}
	e := newTestEcho()
	e.GET("/accounts/:id", NewAccountHandler(svc).Get)

	rec := getRequest(e, "/accounts/7")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got domain.Account
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.ID != 7 {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestAccountHandler_Get_BadID(t *testing.T) {
	svc := &stubAccountService{}
	e := newTestEcho()
	e.GET("/accounts/:id", NewAccountHandler(svc).Get)

	for _, id := range []string{"abc", "0", "-3"} {
		rec := getRequest(e, "/accounts/"+id)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("id %q: status = %d, want 400", id, rec.Code)
		}
	}
}

func TestAccountHandler_Get_NotFound(t *testing.T) {
	svc := &stubAccountService{err: domain.ErrAccountNotFound}
	e := newTestEcho()
	e.GET("/accounts/:id", NewAccountHandler(svc).Get)

	rec := getRequest(e, "/accounts/99")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestAccountHandler_List_Defaults(t *testing.T) {
	svc := &stubAccountService{page: &domain.Page{Data: []domain.Account{}, Page: 1, Limit: 10}}
	e := newTestEcho()
	e.GET("/accounts", NewAccountHandler(svc).List)

	rec := getRequest(e, "/accounts")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	p := svc.lastPagination
	if p.Page != 1 || p.Limit != 10 || p.SortBy != "created_at" || p.SortOrder != domain.SortDesc {
		t.Fatalf("unexpected default pagination: %+v", p)
	}
}

func TestAccountHandler_List_ParsesParams(t *testing.T) {
	svc := &stubAccountService{page: &domain.Page{}}
	e := newTestEcho()
	e.GET("/accounts", NewAccountHandler(svc).List)

	rec := getRequest(e, "/accounts?page=2&limit=25&sort_by=username&sort_order=asc&is_active=blocked&email=corp&username=ali")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	p := svc.lastPagination
	if p.Page != 2 || p.Limit != 25 || p.SortBy != "username" || p.SortOrder != domain.SortAsc {
		t.Fatalf("unexpected pagination: %+v", p)
	}
	f := svc.lastFilter
	if f.IsActive == nil || *f.IsActive != domain.StatusBlocked {
		t.Fatalf("is_active not parsed: %+v", f)
	}
	if f.Email != "corp" || f.Username != "ali" {
		t.Fatalf("substring filters not parsed: %+v", f)
	}
}

func TestAccountHandler_List_BadParams(t *testing.T) {
	svc := &stubAccountService{page: &domain.Page{}}
	e := newTestEcho()
	e.GET("/accounts", NewAccountHandler(svc).List)

	for _, query := range []string{
		"?sort_order=sideways",
		"?is_active=purged",
		"?created_from=yesterday",
	} {
		rec := getRequest(e, "/accounts"+query)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("query %q: status = %d, want 400", query, rec.Code)
		}
	}
}

func TestAccountHandler_Delete_RequiresClaims(t *testing.T) {
	svc := &stubAccountService{}
	e := newTestEcho()
	h := NewAccountHandler(svc)
	e.DELETE("/accounts/:id", h.Delete)
	e.DELETE("/guarded/:id", withClaims(h.Delete))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/accounts/7", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("without claims: status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/guarded/7", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("with claims: status = %d, want 204", rec.Code)
	}
}

func TestAccountHandler_BulkUpdateStatus(t *testing.T) {
	svc := &stubAccountService{affected: 3}
	e := newTestEcho()
	e.PUT("/accounts/bulk/status", withClaims(NewAccountHandler(svc).BulkUpdateStatus))

	rec := putJSON(e, "/accounts/bulk/status", `{"ids":[1,2,3],"status":"blocked"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if svc.lastStatus != domain.StatusBlocked || len(svc.lastIDs) != 3 {
		t.Fatalf("service received ids=%v status=%d", svc.lastIDs, svc.lastStatus)
	}

	var resp bulkStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Affected != 3 {
		t.Fatalf("affected = %d, want 3", resp.Affected)
	}
}

func TestAccountHandler_BulkUpdateStatus_BadRequests(t *testing.T) {
	svc := &stubAccountService{}
	e := newTestEcho()
	e.PUT("/accounts/bulk/status", withClaims(NewAccountHandler(svc).BulkUpdateStatus))

	for _, body := range []string{
		`{"ids":[],"status":"blocked"}`,
		`{"status":"blocked"}`,
		`{"ids":[1],"status":"purged"}`,
	} {
		rec := putJSON(e, "/accounts/bulk/status", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestAccountHandler_Validate(t *testing.T) {
	svc := &stubAccountService{account: &domain.Account{ID: 7, Email: "alice@example.com"}}
	e := newTestEcho()
	e.POST("/accounts/validate", NewAccountHandler(svc).Validate)

	rec := postJSON(e, "/accounts/validate", `{"email":"alice@example.com","password":"s3cret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp validateAccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Valid || resp.Account == nil || resp.Account.ID != 7 {
		t.Fatalf("unexpected response: %s", rec.Body.String())
	}
}

func TestAccountHandler_Validate_BadCredentials(t *testing.T) {
	svc := &stubAccountService{err: domain.ErrInvalidCredentials}
	e := newTestEcho()
	e.POST("/accounts/validate", NewAccountHandler(svc).Validate)

	rec := postJSON(e, "/accounts/validate", `{"email":"alice@example.com","password":"wrong"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp validateAccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Valid || resp.Account != nil {
		t.Fatalf("expected negative result, got %s", rec.Body.String())
	}
}

func putJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}
