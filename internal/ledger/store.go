package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/uferekalu/finacle-banking/internal/models"
)

// UpdateFunc receives private copies of the locked accounts keyed by id. It may
// change their balances and may return a transaction to record with them.
// Returning an error discards every change.
type UpdateFunc func(accounts map[uint]*models.Account) (*models.Transaction, error)

// TransactionFilter narrows ListTransactions. A nil AccountIDs lists everything.
type TransactionFilter struct {
	AccountIDs []uint
	Limit      int
}

// Store is the durable ledger the engine mutates.
type Store interface {
	// AtomicUpdate locks the accounts in ascending id order, runs fn and
	// commits the balance changes together with the returned transaction, or
	// applies nothing. Unknown ids yield ErrNotFound, lock contention ErrBusy.
	AtomicUpdate(ctx context.Context, accountIDs []uint, fn UpdateFunc) (*models.Transaction, error)

	GetAccount(ctx context.Context, id uint) (*models.Account, error)
	CreateAccount(ctx context.Context, account *models.Account) error
	ListAccounts(ctx context.Context, userID uint) ([]models.Account, error)
	GetTransaction(ctx context.Context, id uint) (*models.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error)
}

// Directory resolves account owners.
type Directory interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// PaymentGateway moves money across the boundary of the ledger. Calls are
// not retried by the engine.
type PaymentGateway interface {
	Charge(ctx context.Context, paymentMethodToken string, amount decimal.Decimal) (confirmation string, err error)
	Payout(ctx context.Context, destination string, amount decimal.Decimal) (payoutID string, err error)
}
