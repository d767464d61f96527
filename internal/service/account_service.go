package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eaglebank/eagle-bank-api/internal/auth"
	"github.com/eaglebank/eagle-bank-api/internal/cache"
	"github.com/eaglebank/eagle-bank-api/internal/models"
	"github.com/eaglebank/eagle-bank-api/internal/repository"
	"github.com/eaglebank/eagle-bank-api/internal/utils"
)

// AccountStore is the persistence surface the account service depends on.
type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	GetByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error)
	ListByUser(ctx context.Context, userID string) ([]models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, accountNumber string) error
	CountByUser(ctx context.Context, userID string) (int, error)
}

// AccountCache caches account read projections. The cache only ever serves
// plain reads; funds checks and balance writes always go to the repository.
type AccountCache = cache.ViewCache[models.Account]

const defaultSortCode = "10-10-10"

// Generated account numbers can collide with existing ones; creation retries
// with a fresh number a few times before giving up.
const createAccountAttempts = 5

// AccountService implements bank account lifecycle with ownership checks.
type AccountService struct {
	accounts AccountStore
	views    *AccountCache
}

func NewAccountService(accounts AccountStore, views *AccountCache) *AccountService {
	return &AccountService{accounts: accounts, views: views}
}

func (s *AccountService) Create(ctx context.Context, cmd CreateAccountCommand) (*models.Account, error) {
	now := time.Now().UTC()
	account := &models.Account{
		UserID:      cmd.Principal.UserID,
		SortCode:    defaultSortCode,
		Name:        cmd.Name,
		AccountType: cmd.AccountType,
		Balance:     0.0,
		Currency:    models.CurrencyGBP,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for attempt := 0; attempt < createAccountAttempts; attempt++ {
		account.AccountNumber = utils.GenerateAccountNumber()
		err := s.accounts.Create(ctx, account)
		if errors.Is(err, repository.ErrDuplicateAccount) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return account, nil
	}
	return nil, fmt.Errorf("failed to allocate a unique account number")
}

// Get returns an account. Allowed for the owner; admins may read any account.
func (s *AccountService) Get(ctx context.Context, q GetAccountQuery) (*models.Account, error) {
	key := accountKey(q.AccountNumber)
	if cached, ownerID, ok := s.views.Get(ctx, key); ok {
		if !canReadAccount(q.Principal, ownerID) {
			return nil, ErrForbidden
		}
		cached.UserID = ownerID
		return cached, nil
	}

	account, err := s.accounts.GetByAccountNumber(ctx, q.AccountNumber)
	if err != nil {
		return nil, err
	}
	if !canReadAccount(q.Principal, account.UserID) {
		return nil, ErrForbidden
	}
	s.views.Set(ctx, key, account.UserID, account)
	return account, nil
}

// List returns the caller's own accounts.
func (s *AccountService) List(ctx context.Context, q ListAccountsQuery) ([]models.Account, error) {
	return s.accounts.ListByUser(ctx, q.Principal.UserID)
}

// Update modifies an account's mutable fields. Owner only. All fields are
// optional; absent fields keep their value.
func (s *AccountService) Update(ctx context.Context, cmd UpdateAccountCommand) (*models.Account, error) {
	account, err := s.accounts.GetByAccountNumber(ctx, cmd.AccountNumber)
	if err != nil {
		return nil, err
	}
	if account.UserID != cmd.Principal.UserID {
		return nil, ErrForbidden
	}
	if cmd.Name != nil {
		account.Name = *cmd.Name
	}
	if cmd.AccountType != nil {
		account.AccountType = *cmd.AccountType
	}
	account.UpdatedAt = time.Now().UTC()
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, err
	}
	s.views.Delete(ctx, accountKey(cmd.AccountNumber))
	return account, nil
}

// Delete removes an account. Owner only.
func (s *AccountService) Delete(ctx context.Context, cmd DeleteAccountCommand) error {
	account, err := s.accounts.GetByAccountNumber(ctx, cmd.AccountNumber)
	if err != nil {
		return err
	}
	if account.UserID != cmd.Principal.UserID {
		return ErrForbidden
	}
	if err := s.accounts.Delete(ctx, cmd.AccountNumber); err != nil {
		return err
	}
	s.views.Delete(ctx, accountKey(cmd.AccountNumber))
	return nil
}

func canReadAccount(p auth.Principal, ownerID string) bool {
	return p.UserID == ownerID || p.HasRole(models.RoleAdmin)
}

func accountKey(accountNumber string) string {
	return "account:" + accountNumber
}
