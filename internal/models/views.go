package models

import "time"

// TransactionView is the presentation projection of a transaction.
// Amount is always the absolute value; direction is carried by Type.
// UserID is populated for ownership checks but never serialised.
type TransactionView struct {
	ID            string    `json:"id"`
	AccountNumber string    `json:"accountNumber"`
	UserID        string    `json:"-"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Type          string    `json:"type"`
	Reference     string    `json:"reference,omitempty"`
	CreatedAt     time.Time `json:"createdTimestamp"`
}
