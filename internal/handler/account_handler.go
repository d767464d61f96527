package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/eaglebank/eagle-bank-api/internal/middleware"
	"github.com/eaglebank/eagle-bank-api/internal/models"
	"github.com/eaglebank/eagle-bank-api/internal/repository"
	"github.com/eaglebank/eagle-bank-api/internal/service"
	"github.com/eaglebank/eagle-bank-api/internal/validation"
	"github.com/gin-gonic/gin"
)

// AccountServicer defines the account operations used by AccountHandler.
type AccountServicer interface {
	Create(ctx context.Context, cmd service.CreateAccountCommand) (*models.Account, error)
	Get(ctx context.Context, q service.GetAccountQuery) (*models.Account, error)
	List(ctx context.Context, q service.ListAccountsQuery) ([]models.Account, error)
	Update(ctx context.Context, cmd service.UpdateAccountCommand) (*models.Account, error)
	Delete(ctx context.Context, cmd service.DeleteAccountCommand) error
}

type AccountHandler struct {
	accounts AccountServicer
}

type CreateAccountRequest struct {
	Name        string `json:"name" validate:"required"`
	AccountType string `json:"accountType" validate:"required,oneof=personal"`
}

type UpdateAccountRequest struct {
	Name        *string `json:"name,omitempty"`
	AccountType *string `json:"accountType,omitempty" validate:"omitempty,oneof=personal"`
}

type ListAccountsResponse struct {
	Accounts []models.Account `json:"accounts"`
}

func NewAccountHandler(accounts AccountServicer) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if details := validation.Validate(req); details != nil {
		middleware.RespondWithValidationError(c, details)
		return
	}

	account, err := h.accounts.Create(c.Request.Context(), service.CreateAccountCommand{
		Principal:   principal,
		Name:        req.Name,
		AccountType: req.AccountType,
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to create account")
		return
	}

	c.JSON(http.StatusCreated, account)
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	accounts, err := h.accounts.List(c.Request.Context(), service.ListAccountsQuery{Principal: principal})
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to list accounts")
		return
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	c.JSON(http.StatusOK, ListAccountsResponse{Accounts: accounts})
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	accountNumber := c.Param("accountNumber")
	if detail := validation.AccountNumber(accountNumber); detail != nil {
		middleware.RespondWithValidationError(c, []validation.Detail{*detail})
		return
	}
	principal, _ := middleware.GetPrincipal(c)

	account, err := h.accounts.Get(c.Request.Context(), service.GetAccountQuery{
		AccountNumber: accountNumber,
		Principal:     principal,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			middleware.RespondWithError(c, http.StatusForbidden, "You can only access your own accounts")
		case errors.Is(err, repository.ErrAccountNotFound):
			middleware.RespondWithError(c, http.StatusNotFound, "Account not found")
		default:
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to get account")
		}
		return
	}

	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	accountNumber := c.Param("accountNumber")
	if detail := validation.AccountNumber(accountNumber); detail != nil {
		middleware.RespondWithValidationError(c, []validation.Detail{*detail})
		return
	}
	principal, _ := middleware.GetPrincipal(c)

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if details := validation.Validate(req); details != nil {
		middleware.RespondWithValidationError(c, details)
		return
	}

	account, err := h.accounts.Update(c.Request.Context(), service.UpdateAccountCommand{
		AccountNumber: accountNumber,
		Principal:     principal,
		Name:          req.Name,
		AccountType:   req.AccountType,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			middleware.RespondWithError(c, http.StatusForbidden, "You can only update your own accounts")
		case errors.Is(err, repository.ErrAccountNotFound):
			middleware.RespondWithError(c, http.StatusNotFound, "Account not found")
		default:
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to update account")
		}
		return
	}

	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	accountNumber := c.Param("accountNumber")
	if detail := validation.AccountNumber(accountNumber); detail != nil {
		middleware.RespondWithValidationError(c, []validation.Detail{*detail})
		return
	}
	principal, _ := middleware.GetPrincipal(c)

	err := h.accounts.Delete(c.Request.Context(), service.DeleteAccountCommand{
		AccountNumber: accountNumber,
		Principal:     principal,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			middleware.RespondWithError(c, http.StatusForbidden, "You can only delete your own accounts")
		case errors.Is(err, repository.ErrAccountNotFound):
			middleware.RespondWithError(c, http.StatusNotFound, "Account not found")
		default:
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to delete account")
		}
		return
	}

	c.Status(http.StatusNoContent)
}
