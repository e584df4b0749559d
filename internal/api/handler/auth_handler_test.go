package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/neobrutal/account-system/internal/core/domain"
	"github.com/neobrutal/account-system/internal/core/ports"
)

// stubAuthService returns canned results per method.
type stubAuthService struct {
	registerAccount *domain.Account
	registerErr     error
	pair            *ports.TokenPair
	loginErr        error
	refreshErr      error

	lastRegister ports.RegisterInput
	lastLogin    ports.LoginInput
}

func (s *stubAuthService) Register(_ context.Context, input ports.RegisterInput) (*domain.Account, error) {
	s.lastRegister = input
	return s.registerAccount, s.registerErr
}

func (s *stubAuthService) Login(_ context.Context, input ports.LoginInput) (*ports.TokenPair, error) {
	s.lastLogin = input
	return s.pair, s.loginErr
}

func (s *stubAuthService) Refresh(_ context.Context, _ string) (*ports.TokenPair, error) {
	return s.pair, s.refreshErr
}

// newTestEcho maps domain errors to status codes the way the server's
// error handler does, so handler tests can assert on responses.
func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.NoContent(he.Code)
			return
		}
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			_ = c.NoContent(http.StatusBadRequest)
		case errors.Is(err, domain.ErrAccountExists):
			_ = c.NoContent(http.StatusConflict)
		case errors.Is(err, domain.ErrAccountNotFound):
			_ = c.NoContent(http.StatusNotFound)
		case errors.Is(err, domain.ErrInvalidCredentials),
			errors.Is(err, domain.ErrMissingToken),
			errors.Is(err, domain.ErrInvalidToken):
			_ = c.NoContent(http.StatusUnauthorized)
		default:
			_ = c.NoContent(http.StatusInternalServerError)
		}
	}
	return e
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthHandler_Register(t *testing.T) {
	svc := &stubAuthService{
		registerAccount: &domain.Account{ID: 1, Username: "alice", Email: "alice@example.com"},
	}
	e := newTestEcho()
	e.POST("/auth/register", NewAuthHandler(svc).Register)

	rec := postJSON(e, "/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"longenough"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
	if svc.lastRegister.Username != "alice" {
		t.Fatalf("service received %+v", svc.lastRegister)
	}

	var resp struct {
		Account *domain.Account `json:"account"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Account == nil || resp.Account.ID != 1 {
		t.Fatalf("unexpected response: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_ValidationFailures(t *testing.T) {
	svc := &stubAuthService{}
	e := newTestEcho()
	e.POST("/auth/register", NewAuthHandler(svc).Register)

	bodies := []string{
		`{"username":"al","email":"alice@example.com","password":"longenough"}`,
		`{"username":"alice","email":"not-an-email","password":"longenough"}`,
		`{"username":"alice","email":"alice@example.com","password":"short"}`,
		`{}`,
		`{not json`,
	}
	for _, body := range bodies {
		rec := postJSON(e, "/auth/register", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestAuthHandler_Register_Duplicate(t *testing.T) {
	svc := &stubAuthService{registerErr: domain.ErrAccountExists}
	e := newTestEcho()
	e.POST("/auth/register", NewAuthHandler(svc).Register)

	rec := postJSON(e, "/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"longenough"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	svc := &stubAuthService{pair: &ports.TokenPair{AccessToken: "acc", RefreshToken: "ref"}}
	e := newTestEcho()
	e.POST("/auth/login", NewAuthHandler(svc).Login)

	rec := postJSON(e, "/auth/login", `{"username":"alice","password":"s3cret","device_id":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.lastLogin.DeviceID != 5 {
		t.Fatalf("device id not forwarded: %+v", svc.lastLogin)
	}

	var pair ports.TokenPair
	if err := json.Unmarshal(rec.Body.Bytes(), &pair); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if pair.AccessToken != "acc" || pair.RefreshToken != "ref" {
		t.Fatalf("unexpected pair: %+v", pair)
	}
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	svc := &stubAuthService{loginErr: domain.ErrInvalidCredentials}
	e := newTestEcho()
	e.POST("/auth/login", NewAuthHandler(svc).Login)

	rec := postJSON(e, "/auth/login", `{"username":"alice","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthHandler_Refresh_InvalidToken(t *testing.T) {
	svc := &stubAuthService{refreshErr: domain.ErrInvalidToken}
	e := newTestEcho()
	e.POST("/auth/refresh", NewAuthHandler(svc).Refresh)

	rec := postJSON(e, "/auth/refresh", `{"refresh_token":"stale"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
