package models

import "time"

// Roles carried in the realm_access claim of a bearer token.
const (
	RoleAdmin          = "admin"
	RoleAccountManager = "account-manager"
)

const (
	AccountTypePersonal = "personal"
	CurrencyGBP         = "GBP"
)

const (
	TransactionTypeDeposit    = "deposit"
	TransactionTypeWithdrawal = "withdrawal"
)

type Address struct {
	Line1    string `json:"line1" validate:"required"`
	Line2    string `json:"line2,omitempty"`
	Line3    string `json:"line3,omitempty"`
	Town     string `json:"town" validate:"required"`
	County   string `json:"county" validate:"required"`
	Postcode string `json:"postcode" validate:"required,uk_postcode"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"-"`
	PhoneNumber  string    `json:"phoneNumber"`
	Address      Address   `json:"address"`
	CreatedAt    time.Time `json:"createdTimestamp"`
	UpdatedAt    time.Time `json:"updatedTimestamp"`
}

// Account is owned by exactly one user. UserID is used for ownership checks
// and never serialised to API responses.
type Account struct {
	AccountNumber string    `json:"accountNumber"`
	UserID        string    `json:"-"`
	SortCode      string    `json:"sortCode"`
	Name          string    `json:"name"`
	AccountType   string    `json:"accountType"`
	Balance       float64   `json:"balance"`
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"createdTimestamp"`
	UpdatedAt     time.Time `json:"updatedTimestamp"`
}

// Transaction is the stored write model. Amount is signed: positive for
// deposits, negative for withdrawals. The signed value never reaches API
// clients; View() renders the absolute amount alongside Type.
// Transactions are immutable once created.
type Transaction struct {
	ID            string
	AccountNumber string
	UserID        string
	Amount        float64
	Currency      string
	Type          string
	Reference     string
	CreatedAt     time.Time
}

// View converts the write model to the presentation projection.
func (t *Transaction) View() TransactionView {
	amount := t.Amount
	if amount < 0 {
		amount = -amount
	}
	return TransactionView{
		ID:            t.ID,
		AccountNumber: t.AccountNumber,
		UserID:        t.UserID,
		Amount:        amount,
		Currency:      t.Currency,
		Type:          t.Type,
		Reference:     t.Reference,
		CreatedAt:     t.CreatedAt,
	}
}
