package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AccountType string

const (
	Savings  AccountType = "Savings"
	Checking AccountType = "Checking"
	Loan     AccountType = "Loan"
)

func (t AccountType) Valid() bool {
	switch t {
	case Savings, Checking, Loan:
		return true
	}
	return false
}

type TransactionType string

const (
	Deposit    TransactionType = "Deposit"
	Withdrawal TransactionType = "Withdrawal"
	Transfer   TransactionType = "Transfer"
)

type User struct {
	gorm.Model
	Name     string `gorm:"size:50;not null"`
	Email    string `gorm:"uniqueIndex;size:255;not null"`
	Password string `gorm:"size:255;not null"`
}

type Account struct {
	gorm.Model
	AccountNumber     string          `gorm:"uniqueIndex;size:10;not null"`
	AccountType       AccountType     `gorm:"type:varchar(16);not null"`
	Balance           decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0;check:balance >= 0"`
	UserID            uint            `gorm:"index;not null"`
	PayoutDestination string          `gorm:"size:255;not null"`
}

// Transaction is an append-only ledger entry. FromAccountID is nil for
// deposits and ToAccountID is nil for withdrawals.
type Transaction struct {
	ID            uint            `gorm:"primaryKey"`
	Type          TransactionType `gorm:"type:varchar(16);not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	FromAccountID *uint           `gorm:"index"`
	ToAccountID   *uint           `gorm:"index"`
	Reference     string          `gorm:"size:255"` // gateway confirmation or payout id
	Date          time.Time       `gorm:"not null;index"`
}

// IdempotencyKey stores the first response produced for a client-supplied key.
type IdempotencyKey struct {
	Key       string `gorm:"primaryKey;size:320"`
	Status    int    `gorm:"not null"`
	Body      []byte
	CreatedAt time.Time
}

var ErrMalformedTransaction = errors.New("malformed transaction")

// CheckShape verifies the reference and amount invariants of a transaction
// before it is written.
func (t *Transaction) CheckShape() error {
	if !t.Amount.IsPositive() {
		return ErrMalformedTransaction
	}
	switch t.Type {
	case Deposit:
		if t.FromAccountID != nil || t.ToAccountID == nil {
			return ErrMalformedTransaction
		}
	case Withdrawal:
		if t.FromAccountID == nil || t.ToAccountID != nil {
			return ErrMalformedTransaction
		}
	case Transfer:
		if t.FromAccountID == nil || t.ToAccountID == nil || *t.FromAccountID == *t.ToAccountID {
			return ErrMalformedTransaction
		}
	default:
		return ErrMalformedTransaction
	}
	return nil
}

// Involves reports whether the transaction touches any of the given accounts.
func (t *Transaction) Involves(ids ...uint) bool {
	for _, id := range ids {
		if (t.FromAccountID != nil && *t.FromAccountID == id) || (t.ToAccountID != nil && *t.ToAccountID == id) {
			return true
		}
	}
	return false
}
