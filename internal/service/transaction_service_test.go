package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/eaglebank/eagle-bank-api/internal/models"
	"github.com/eaglebank/eagle-bank-api/internal/repository"
)

// memoryBank is an in-memory stand-in for the account and transaction
// repositories. A single mutex serialises balance updates the way the row
// lock does in Postgres.
type memoryBank struct {
	mu           sync.Mutex
	accounts     map[string]*models.Account
	transactions []*models.Transaction
}

func newMemoryBank(accounts ...*models.Account) *memoryBank {
	bank := &memoryBank{accounts: make(map[string]*models.Account)}
	for _, account := range accounts {
		bank.accounts[account.AccountNumber] = account
	}
	return bank
}

func (b *memoryBank) Create(ctx context.Context, account *models.Account) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.accounts[account.AccountNumber]; exists {
		return repository.ErrDuplicateAccount
	}
	b.accounts[account.AccountNumber] = account
	return nil
}

func (b *memoryBank) GetByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	account, ok := b.accounts[accountNumber]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func (b *memoryBank) ListByUser(ctx context.Context, userID string) ([]models.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var list []models.Account
	for _, account := range b.accounts {
		if account.UserID == userID {
			list = append(list, *account)
		}
	}
	return list, nil
}

func (b *memoryBank) Update(ctx context.Context, account *models.Account) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[account.AccountNumber] = account
	return nil
}

func (b *memoryBank) Delete(ctx context.Context, accountNumber string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.accounts, accountNumber)
	return nil
}

func (b *memoryBank) CountByUser(ctx context.Context, userID string) (int, error) {
	list, _ := b.ListByUser(ctx, userID)
	return len(list), nil
}

// CreateWithBalanceUpdate applies the signed amount and records the
// transaction atomically, re-checking funds under the lock.
func (b *memoryBank) CreateWithBalanceUpdate(ctx context.Context, transaction *models.Transaction) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	account, ok := b.accounts[transaction.AccountNumber]
	if !ok {
		return repository.ErrAccountNotFound
	}
	if account.Balance+transaction.Amount < 0 {
		return repository.ErrInsufficientFunds
	}
	account.Balance += transaction.Amount
	b.transactions = append(b.transactions, transaction)
	return nil
}

func (b *memoryBank) GetByID(ctx context.Context, accountNumber, transactionID string) (*models.Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, transaction := range b.transactions {
		if transaction.AccountNumber == accountNumber && transaction.ID == transactionID {
			copied := *transaction
			return &copied, nil
		}
	}
	return nil, repository.ErrTransactionNotFound
}

func (b *memoryBank) ListByAccount(ctx context.Context, accountNumber string) ([]models.Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var list []models.Transaction
	for _, transaction := range b.transactions {
		if transaction.AccountNumber == accountNumber {
			list = append(list, *transaction)
		}
	}
	return list, nil
}

func (b *memoryBank) balance(accountNumber string) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.accounts[accountNumber].Balance
}

func testAccount(balance float64) *models.Account {
	return &models.Account{
		AccountNumber: "01234567",
		UserID:        "usr-alice",
		SortCode:      "10-10-10",
		Balance:       balance,
		Currency:      models.CurrencyGBP,
	}
}

func TestTransactionServiceDeposit(t *testing.T) {
	bank := newMemoryBank(testAccount(50))
	svc := NewTransactionService(bank, bank, nil)

	transaction, err := svc.Create(context.Background(), CreateTransactionCommand{
		AccountNumber: "01234567",
		Principal:     principalFor("usr-alice"),
		Amount:        25.50,
		Currency:      models.CurrencyGBP,
		Type:          models.TransactionTypeDeposit,
		Reference:     "salary",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transaction.Amount != 25.50 {
		t.Errorf("expected stored amount +25.50, got %v", transaction.Amount)
	}
	if got := bank.balance("01234567"); got != 75.50 {
		t.Errorf("expected balance 75.50, got %v", got)
	}
	if transaction.ID == "" || transaction.ID[:4] != "txn-" {
		t.Errorf("expected generated txn- id, got %q", transaction.ID)
	}
}

func TestTransactionServiceWithdrawalStoresNegativeAmount(t *testing.T) {
	bank := newMemoryBank(testAccount(100))
	svc := NewTransactionService(bank, bank, nil)

	transaction, err := svc.Create(context.Background(), CreateTransactionCommand{
		AccountNumber: "01234567",
		Principal:     principalFor("usr-alice"),
		Amount:        40,
		Currency:      models.CurrencyGBP,
		Type:          models.TransactionTypeWithdrawal,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transaction.Amount != -40 {
		t.Errorf("expected stored amount -40, got %v", transaction.Amount)
	}
	if view := transaction.View(); view.Amount != 40 {
		t.Errorf("expected view amount 40, got %v", view.Amount)
	}
	if got := bank.balance("01234567"); got != 60 {
		t.Errorf("expected balance 60, got %v", got)
	}
}

func TestTransactionServiceWithdrawalBoundary(t *testing.T) {
	tests := []struct {
		name        string
		amount      float64
		wantErr     error
		wantBalance float64
	}{
		{"amount equals balance", 100, nil, 0},
		{"amount just above balance", 100.01, repository.ErrInsufficientFunds, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bank := newMemoryBank(testAccount(100))
			svc := NewTransactionService(bank, bank, nil)

			_, err := svc.Create(context.Background(), CreateTransactionCommand{
				AccountNumber: "01234567",
				Principal:     principalFor("usr-alice"),
				Amount:        tt.amount,
				Currency:      models.CurrencyGBP,
				Type:          models.TransactionTypeWithdrawal,
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if got := bank.balance("01234567"); got != tt.wantBalance {
				t.Errorf("expected balance %v, got %v", tt.wantBalance, got)
			}
			if tt.wantErr != nil && len(bank.transactions) != 0 {
				t.Error("rejected withdrawal must not be recorded")
			}
		})
	}
}

func TestTransactionServiceRejectsNonPositiveAmount(t *testing.T) {
	bank := newMemoryBank(testAccount(100))
	svc := NewTransactionService(bank, bank, nil)

	for _, amount := range []float64{0, -10} {
		_, err := svc.Create(context.Background(), CreateTransactionCommand{
			AccountNumber: "01234567",
			Principal:     principalFor("usr-alice"),
			Amount:        amount,
			Currency:      models.CurrencyGBP,
			Type:          models.TransactionTypeDeposit,
		})
		var failed *ValidationFailedError
		if !errors.As(err, &failed) {
			t.Errorf("amount %v: expected ValidationFailedError, got %v", amount, err)
		}
	}
	if got := bank.balance("01234567"); got != 100 {
		t.Errorf("expected balance untouched, got %v", got)
	}
}

func TestTransactionServiceCreateAuthorization(t *testing.T) {
	bank := newMemoryBank(testAccount(100))
	svc := NewTransactionService(bank, bank, nil)

	// Account resolution precedes ownership: unknown accounts are 404 even
	// for callers who could never have owned them.
	_, err := svc.Create(context.Background(), CreateTransactionCommand{
		AccountNumber: "01999999",
		Principal:     principalFor("usr-bob"),
		Amount:        10,
		Currency:      models.CurrencyGBP,
		Type:          models.TransactionTypeDeposit,
	})
	if !errors.Is(err, repository.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	_, err = svc.Create(context.Background(), CreateTransactionCommand{
		AccountNumber: "01234567",
		Principal:     principalFor("usr-bob"),
		Amount:        10,
		Currency:      models.CurrencyGBP,
		Type:          models.TransactionTypeDeposit,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

// Concurrent withdrawals must never drive the balance negative; the store's
// serialised funds check is authoritative even when the advisory check in the
// service read a stale balance.
func TestTransactionServiceConcurrentWithdrawals(t *testing.T) {
	bank := newMemoryBank(testAccount(100))
	svc := NewTransactionService(bank, bank, nil)

	const workers = 8
	const amount = 25.0

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), CreateTransactionCommand{
				AccountNumber: "01234567",
				Principal:     principalFor("usr-alice"),
				Amount:        amount,
				Currency:      models.CurrencyGBP,
				Type:          models.TransactionTypeWithdrawal,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, repository.ErrInsufficientFunds):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	final := bank.balance("01234567")
	if final < 0 {
		t.Errorf("balance went negative: %v", final)
	}
	if want := 100 - amount*float64(successes); final != want {
		t.Errorf("balance %v does not equal running sum %v", final, want)
	}
	if len(bank.transactions) != successes {
		t.Errorf("recorded %d transactions for %d successful withdrawals", len(bank.transactions), successes)
	}
}

func TestTransactionServiceGetOwnerOnly(t *testing.T) {
	bank := newMemoryBank(testAccount(100))
	svc := NewTransactionService(bank, bank, nil)

	created, err := svc.Create(context.Background(), CreateTransactionCommand{
		AccountNumber: "01234567",
		Principal:     principalFor("usr-alice"),
		Amount:        10,
		Currency:      models.CurrencyGBP,
		Type:          models.TransactionTypeDeposit,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.Get(context.Background(), GetTransactionQuery{
		AccountNumber: "01234567",
		TransactionID: created.ID,
		Principal:     principalFor("usr-alice"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("expected transaction %q, got %q", created.ID, got.ID)
	}

	_, err = svc.Get(context.Background(), GetTransactionQuery{
		AccountNumber: "01234567",
		TransactionID: created.ID,
		Principal:     principalFor("usr-bob"),
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	_, err = svc.Get(context.Background(), GetTransactionQuery{
		AccountNumber: "01234567",
		TransactionID: "txn-missing",
		Principal:     principalFor("usr-alice"),
	})
	if !errors.Is(err, repository.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestTransactionServiceListOwnerOnly(t *testing.T) {
	bank := newMemoryBank(testAccount(100))
	svc := NewTransactionService(bank, bank, nil)

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(context.Background(), CreateTransactionCommand{
			AccountNumber: "01234567",
			Principal:     principalFor("usr-alice"),
			Amount:        5,
			Currency:      models.CurrencyGBP,
			Type:          models.TransactionTypeDeposit,
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	list, err := svc.List(context.Background(), ListTransactionsQuery{
		AccountNumber: "01234567",
		Principal:     principalFor("usr-alice"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 3 {
		t.Errorf("expected 3 transactions, got %d", len(list))
	}

	_, err = svc.List(context.Background(), ListTransactionsQuery{
		AccountNumber: "01234567",
		Principal:     principalFor("usr-bob"),
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
