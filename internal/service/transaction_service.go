package service

import (
	"context"
	"time"

	"github.com/eaglebank/eagle-bank-api/internal/models"
	"github.com/eaglebank/eagle-bank-api/internal/repository"
	"github.com/eaglebank/eagle-bank-api/internal/utils"
	"github.com/eaglebank/eagle-bank-api/internal/validation"
)

// TransactionStore is the persistence surface the transaction service
// depends on. CreateWithBalanceUpdate must persist the transaction and the
// balance change atomically, serialised per account.
type TransactionStore interface {
	CreateWithBalanceUpdate(ctx context.Context, transaction *models.Transaction) error
	GetByID(ctx context.Context, accountNumber, transactionID string) (*models.Transaction, error)
	ListByAccount(ctx context.Context, accountNumber string) ([]models.Transaction, error)
}

// TransactionService creates transactions and keeps the owning account's
// balance equal to the running sum of signed transaction amounts.
type TransactionService struct {
	transactions TransactionStore
	accounts     AccountStore
	views        *AccountCache
}

func NewTransactionService(transactions TransactionStore, accounts AccountStore, views *AccountCache) *TransactionService {
	return &TransactionService{transactions: transactions, accounts: accounts, views: views}
}

// Create runs the transaction protocol: resolve the account, enforce
// ownership, validate the request, check funds, then persist the transaction
// and the balance change as one unit. The funds check here is advisory; the
// authoritative check happens under the row lock inside the store.
func (s *TransactionService) Create(ctx context.Context, cmd CreateTransactionCommand) (*models.Transaction, error) {
	account, err := s.accounts.GetByAccountNumber(ctx, cmd.AccountNumber)
	if err != nil {
		return nil, err
	}
	if account.UserID != cmd.Principal.UserID {
		return nil, ErrForbidden
	}

	if cmd.Amount <= 0 {
		return nil, &ValidationFailedError{Details: []validation.Detail{{
			Field:   "amount",
			Message: "Amount must be greater than zero",
			Type:    validation.TypeInvalidValue,
		}}}
	}

	// Direction is carried by type, never by the request amount's sign.
	signedAmount := cmd.Amount
	if cmd.Type == models.TransactionTypeWithdrawal {
		if detail := validation.SufficientFunds(account.Balance, cmd.Amount); detail != nil {
			return nil, repository.ErrInsufficientFunds
		}
		signedAmount = -cmd.Amount
	}

	transaction := &models.Transaction{
		ID:            utils.GenerateTransactionID(),
		AccountNumber: cmd.AccountNumber,
		UserID:        cmd.Principal.UserID,
		Amount:        signedAmount,
		Currency:      cmd.Currency,
		Type:          cmd.Type,
		Reference:     cmd.Reference,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.transactions.CreateWithBalanceUpdate(ctx, transaction); err != nil {
		return nil, err
	}
	s.views.Delete(ctx, accountKey(cmd.AccountNumber))
	return transaction, nil
}

// Get returns a single transaction. Account owner only.
func (s *TransactionService) Get(ctx context.Context, q GetTransactionQuery) (*models.Transaction, error) {
	account, err := s.accounts.GetByAccountNumber(ctx, q.AccountNumber)
	if err != nil {
		return nil, err
	}
	if account.UserID != q.Principal.UserID {
		return nil, ErrForbidden
	}
	return s.transactions.GetByID(ctx, q.AccountNumber, q.TransactionID)
}

// List returns an account's transactions. Account owner only.
func (s *TransactionService) List(ctx context.Context, q ListTransactionsQuery) ([]models.Transaction, error) {
	account, err := s.accounts.GetByAccountNumber(ctx, q.AccountNumber)
	if err != nil {
		return nil, err
	}
	if account.UserID != q.Principal.UserID {
		return nil, ErrForbidden
	}
	return s.transactions.ListByAccount(ctx, q.AccountNumber)
}
