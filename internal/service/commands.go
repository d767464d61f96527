package service

import (
	"errors"

	"github.com/eaglebank/eagle-bank-api/internal/auth"
	"github.com/eaglebank/eagle-bank-api/internal/models"
	"github.com/eaglebank/eagle-bank-api/internal/validation"
)

// Service-level errors. Repository sentinels pass through untouched.
var (
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserHasAccounts    = errors.New("user has active accounts")
)

// ValidationFailedError carries the aggregated detail list for a request that
// failed semantic validation inside a service.
type ValidationFailedError struct {
	Details []validation.Detail
}

func (e *ValidationFailedError) Error() string { return "validation failed" }

type CreateUserCommand struct {
	Name        string
	Email       string
	Password    string
	PhoneNumber string
	Address     models.Address
}

type UpdateUserCommand struct {
	UserID      string
	Principal   auth.Principal
	Name        string
	Email       string
	PhoneNumber string
	Address     models.Address
}

type GetUserQuery struct {
	UserID    string
	Principal auth.Principal
}

type DeleteUserCommand struct {
	UserID    string
	Principal auth.Principal
}

type CreateAccountCommand struct {
	Principal   auth.Principal
	Name        string
	AccountType string
}

type GetAccountQuery struct {
	AccountNumber string
	Principal     auth.Principal
}

type ListAccountsQuery struct {
	Principal auth.Principal
}

type UpdateAccountCommand struct {
	AccountNumber string
	Principal     auth.Principal
	Name          *string
	AccountType   *string
}

type DeleteAccountCommand struct {
	AccountNumber string
	Principal     auth.Principal
}

type CreateTransactionCommand struct {
	AccountNumber string
	Principal     auth.Principal
	Amount        float64
	Currency      string
	Type          string
	Reference     string
}

type GetTransactionQuery struct {
	AccountNumber string
	TransactionID string
	Principal     auth.Principal
}

type ListTransactionsQuery struct {
	AccountNumber string
	Principal     auth.Principal
}

type LoginCommand struct {
	Email    string
	Password string
}

type RefreshTokenCommand struct {
	Token string
}
