package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/neobrutal/account-system/internal/core/domain"
	"github.com/neobrutal/account-system/internal/core/ports"
)

// AccountHandler handles HTTP requests for account operations. Every
// route it serves is registered as protected; the Authn guard has
// already verified the caller by the time a method here runs.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// Create handles POST /accounts.
//
// @Summary      Create an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAccountRequest  true  "Account details"
// @Success      201   {object}  domain.Account
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /accounts [post]
func (h *AccountHandler) Create(c echo.Context) error {
	var req createAccountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	account, err := h.service.Create(c.Request().Context(), ports.CreateAccountInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, account)
}

// List handles GET /accounts.
//
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Page size (default 10)"
// @Param        sort_by     query     string  false  "Sort column"
// @Param        sort_order  query     string  false  "ASC or DESC"
// @Param        is_active   query     string  false  "active, inactive or blocked"
// @Param        email       query     string  false  "Email substring"
// @Param        username    query     string  false  "Username substring"
// @Success      200         {object}  domain.Page
// @Failure      400         {object}  map[string]string
// @Router       /accounts [get]
func (h *AccountHandler) List(c echo.Context) error {
	filter, pagination, err := listParams(c)
	if err != nil {
		return err
	}

	page, err := h.service.List(c.Request().Context(), filter, pagination)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, page)
}

// Stats handles GET /accounts/stats.
//
// @Summary      Account statistics
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.AccountStats
// @Router       /accounts/stats [get]
func (h *AccountHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Search handles GET /accounts/search.
//
// @Summary      Search accounts by keyword
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        keyword  query     string  true   "Search keyword (min 2 chars)"
// @Param        limit    query     int     false  "Max results (default 10)"
// @Success      200      {array}   domain.Account
// @Failure      400      {object}  map[string]string
// @Router       /accounts/search [get]
func (h *AccountHandler) Search(c echo.Context) error {
	keyword := c.QueryParam("keyword")
	limit := intParam(c, "limit", 10)

	accounts, err := h.service.Search(c.Request().Context(), keyword, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, accounts)
}

// Get handles GET /accounts/:id.
//
// @Summary      Get an account by id
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Account id"
// @Success      200  {object}  domain.Account
// @Failure      404  {object}  map[string]string
// @Router       /accounts/{id} [get]
func (h *AccountHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	account, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, account)
}

// Update handles PUT /accounts/:id.
//
// @Summary      Update an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                   true  "Account id"
// @Param        body  body      updateAccountRequest  true  "Fields to update"
// @Success      200   {object}  domain.Account
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /accounts/{id} [put]
func (h *AccountHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req updateAccountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	upd := domain.AccountUpdate{Email: req.Email}
	if req.IsActive != nil {
		status, err := domain.ParseStatus(*req.IsActive)
		if err != nil {
			return err
		}
		upd.IsActive = &status
	}

	account, err := h.service.Update(c.Request().Context(), id, upd)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, account)
}

// Delete handles DELETE /accounts/:id (soft delete).
//
// @Summary      Delete an account
// @Tags         accounts
// @Security     BearerAuth
// @Param        id  path  int  true  "Account id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /accounts/{id} [delete]
func (h *AccountHandler) Delete(c echo.Context) error {
	if _, err := ctxClaims(c); err != nil {
		return err
	}

	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// ChangePassword handles PUT /accounts/:id/password.
//
// @Summary      Change an account's password
// @Tags         accounts
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  int                    true  "Account id"
// @Param        body  body  changePasswordRequest  true  "Current and new password"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /accounts/{id}/password [put]
func (h *AccountHandler) ChangePassword(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	if err := h.service.ChangePassword(c.Request().Context(), id, ports.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// BulkUpdateStatus handles PUT /accounts/bulk/status.
//
// @Summary      Bulk update account status
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bulkStatusRequest  true  "Ids and target status"
// @Success      200   {object}  bulkStatusResponse
// @Failure      400   {object}  map[string]string
// @Router       /accounts/bulk/status [put]
func (h *AccountHandler) BulkUpdateStatus(c echo.Context) error {
	if _, err := ctxClaims(c); err != nil {
		return err
	}

	var req bulkStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		return err
	}

	affected, err := h.service.BulkUpdateStatus(c.Request().Context(), req.IDs, status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, bulkStatusResponse{Affected: affected})
}

// Validate handles POST /accounts/validate.
//
// @Summary      Validate credentials
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      validateAccountRequest  true  "Credentials"
// @Success      200   {object}  validateAccountResponse
// @Router       /accounts/validate [post]
func (h *AccountHandler) Validate(c echo.Context) error {
	var req validateAccountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	account, err := h.service.Validate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		// Credential failures are a negative result here, not an error:
		// the endpoint answers "are these credentials valid".
		if errors.Is(err, domain.ErrAccountNotFound) || errors.Is(err, domain.ErrInvalidCredentials) {
			return c.JSON(http.StatusOK, validateAccountResponse{Valid: false, Message: "invalid credentials"})
		}
		return err
	}

	return c.JSON(http.StatusOK, validateAccountResponse{Valid: true, Account: account})
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, domain.ErrInvalidInput
	}
	return id, nil
}
