package store

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/uferekalu/finacle-banking/internal/ledger"
	"github.com/uferekalu/finacle-banking/internal/models"
)

// PostgreSQL error codes the stores react to.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeNumericOverflow      = "22003"
)

// lockOrder returns the ids sorted ascending without duplicates. Every
// AtomicUpdate acquires locks in this order.
func lockOrder(ids []uint) []uint {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// checkRecord validates a transaction produced inside AtomicUpdate. It may
// only reference accounts that were locked for the update.
func checkRecord(txn *models.Transaction, locked map[uint]*models.Account) error {
	if err := txn.CheckShape(); err != nil {
		return err
	}
	for _, ref := range []*uint{txn.FromAccountID, txn.ToAccountID} {
		if ref == nil {
			continue
		}
		if _, ok := locked[*ref]; !ok {
			return fmt.Errorf("%w: account %d is not locked", models.ErrMalformedTransaction, *ref)
		}
	}
	return nil
}

// checkBalance enforces the bounds both stores share: never negative, never
// above ledger.MaxBalance.
func checkBalance(a *models.Account) error {
	if a.Balance.IsNegative() {
		return fmt.Errorf("account %d: %w", a.ID, ledger.ErrInsufficientBalance)
	}
	if a.Balance.GreaterThan(ledger.MaxBalance) {
		return fmt.Errorf("account %d: %w", a.ID, ledger.ErrBalanceLimit)
	}
	return nil
}

// translate maps driver errors onto the ledger taxonomy. Other errors pass
// through untouched.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ledger.ErrNotFound, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
			return fmt.Errorf("%w: %v", ledger.ErrBusy, err)
		case codeUniqueViolation:
			return fmt.Errorf("%w: %v", ledger.ErrAlreadyExists, err)
		case codeCheckViolation:
			return fmt.Errorf("%w: %v", ledger.ErrInsufficientBalance, err)
		case codeNumericOverflow:
			return ledger.ErrBalanceLimit
		}
	}
	return err
}

func cloneTransaction(t models.Transaction) models.Transaction {
	if t.FromAccountID != nil {
		id := *t.FromAccountID
		t.FromAccountID = &id
	}
	if t.ToAccountID != nil {
		id := *t.ToAccountID
		t.ToAccountID = &id
	}
	return t
}
