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

// TransactionServicer defines the transaction operations used by
// TransactionHandler.
type TransactionServicer interface {
	Create(ctx context.Context, cmd service.CreateTransactionCommand) (*models.Transaction, error)
	Get(ctx context.Context, q service.GetTransactionQuery) (*models.Transaction, error)
	List(ctx context.Context, q service.ListTransactionsQuery) ([]models.Transaction, error)
}

type TransactionHandler struct {
	transactions TransactionServicer
}

// CreateTransactionRequest carries a strictly positive amount; direction is
// carried by Type, never by the amount's sign.
type CreateTransactionRequest struct {
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Currency  string  `json:"currency" validate:"required,oneof=GBP"`
	Type      string  `json:"type" validate:"required,oneof=deposit withdrawal"`
	Reference string  `json:"reference"`
}

type ListTransactionsResponse struct {
	Transactions []models.TransactionView `json:"transactions"`
}

func NewTransactionHandler(transactions TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	accountNumber := c.Param("accountNumber")
	if detail := validation.AccountNumber(accountNumber); detail != nil {
		middleware.RespondWithValidationError(c, []validation.Detail{*detail})
		return
	}
	principal, _ := middleware.GetPrincipal(c)

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if details := validation.Validate(req); details != nil {
		middleware.RespondWithValidationError(c, details)
		return
	}

	transaction, err := h.transactions.Create(c.Request.Context(), service.CreateTransactionCommand{
		AccountNumber: accountNumber,
		Principal:     principal,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Type:          req.Type,
		Reference:     req.Reference,
	})
	if err != nil {
		var failed *service.ValidationFailedError
		switch {
		case errors.Is(err, repository.ErrAccountNotFound):
			middleware.RespondWithError(c, http.StatusNotFound, "Account not found")
		case errors.Is(err, service.ErrForbidden):
			middleware.RespondWithError(c, http.StatusForbidden, "You can only create transactions for your own accounts")
		case errors.Is(err, repository.ErrInsufficientFunds):
			middleware.RespondInsufficientFunds(c)
		case errors.As(err, &failed):
			middleware.RespondWithValidationError(c, failed.Details)
		default:
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to create transaction")
		}
		return
	}

	c.JSON(http.StatusCreated, transaction.View())
}

func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	accountNumber := c.Param("accountNumber")
	if detail := validation.AccountNumber(accountNumber); detail != nil {
		middleware.RespondWithValidationError(c, []validation.Detail{*detail})
		return
	}
	principal, _ := middleware.GetPrincipal(c)

	transactions, err := h.transactions.List(c.Request.Context(), service.ListTransactionsQuery{
		AccountNumber: accountNumber,
		Principal:     principal,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAccountNotFound):
			middleware.RespondWithError(c, http.StatusNotFound, "Account not found")
		case errors.Is(err, service.ErrForbidden):
			middleware.RespondWithError(c, http.StatusForbidden, "You can only view transactions for your own accounts")
		default:
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to list transactions")
		}
		return
	}

	views := make([]models.TransactionView, len(transactions))
	for i := range transactions {
		views[i] = transactions[i].View()
	}
	c.JSON(http.StatusOK, ListTransactionsResponse{Transactions: views})
}

func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	accountNumber := c.Param("accountNumber")
	if detail := validation.AccountNumber(accountNumber); detail != nil {
		middleware.RespondWithValidationError(c, []validation.Detail{*detail})
		return
	}
	transactionID := c.Param("transactionId")
	principal, _ := middleware.GetPrincipal(c)

	transaction, err := h.transactions.Get(c.Request.Context(), service.GetTransactionQuery{
		AccountNumber: accountNumber,
		TransactionID: transactionID,
		Principal:     principal,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAccountNotFound):
			middleware.RespondWithError(c, http.StatusNotFound, "Account not found")
		case errors.Is(err, repository.ErrTransactionNotFound):
			middleware.RespondWithError(c, http.StatusNotFound, "Transaction not found")
		case errors.Is(err, service.ErrForbidden):
			middleware.RespondWithError(c, http.StatusForbidden, "You can only view your own transactions")
		default:
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to get transaction")
		}
		return
	}

	c.JSON(http.StatusOK, transaction.View())
}
