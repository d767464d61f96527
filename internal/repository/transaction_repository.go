package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/eaglebank/eagle-bank-api/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionRepository persists transactions and owns the atomic
// balance-update step of transaction creation.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, account_number, user_id, amount, currency, type,
	COALESCE(reference, ''), created_at`

// CreateWithBalanceUpdate inserts the transaction and applies its signed
// amount to the owning account's balance in one database transaction.
// The account row is locked with FOR UPDATE so concurrent mutations of the
// same account are serialised; the funds check against the locked balance is
// the authoritative one. Either both writes commit or neither is visible.
func (r *TransactionRepository) CreateWithBalanceUpdate(ctx context.Context, transaction *models.Transaction) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var balance float64
	err = tx.QueryRow(ctx,
		`SELECT balance FROM accounts WHERE account_number = $1 FOR UPDATE`,
		transaction.AccountNumber,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAccountNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock account: %w", err)
	}

	if balance+transaction.Amount < 0 {
		return ErrInsufficientFunds
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (id, account_number, user_id, amount, currency, type, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		transaction.ID, transaction.AccountNumber, transaction.UserID,
		transaction.Amount, transaction.Currency, transaction.Type,
		nullString(transaction.Reference), transaction.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE accounts SET balance = balance + $2, updated_at = $3
		WHERE account_number = $1`,
		transaction.AccountNumber, transaction.Amount, transaction.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, accountNumber, transactionID string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE id = $1 AND account_number = $2`
	transaction, err := scanTransaction(r.pool.QueryRow(ctx, query, transactionID, accountNumber))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return transaction, nil
}

func (r *TransactionRepository) ListByAccount(ctx context.Context, accountNumber string) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE account_number = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *transaction)
	}
	return transactions, rows.Err()
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var transaction models.Transaction
	err := row.Scan(
		&transaction.ID, &transaction.AccountNumber, &transaction.UserID,
		&transaction.Amount, &transaction.Currency, &transaction.Type,
		&transaction.Reference, &transaction.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
