package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionCheckShape(t *testing.T) {
	a, b := uint(1), uint(2)
	one := decimal.NewFromInt(1)

	cases := []struct {
		name string
		txn  Transaction
		ok   bool
	}{
		{"deposit", Transaction{Type: Deposit, Amount: one, ToAccountID: &a}, true},
		{"deposit with source", Transaction{Type: Deposit, Amount: one, FromAccountID: &b, ToAccountID: &a}, false},
		{"withdrawal", Transaction{Type: Withdrawal, Amount: one, FromAccountID: &a}, true},
		{"withdrawal without source", Transaction{Type: Withdrawal, Amount: one}, false},
		{"transfer", Transaction{Type: Transfer, Amount: one, FromAccountID: &a, ToAccountID: &b}, true},
		{"transfer to itself", Transaction{Type: Transfer, Amount: one, FromAccountID: &a, ToAccountID: &a}, false},
		{"transfer missing side", Transaction{Type: Transfer, Amount: one, FromAccountID: &a}, false},
		{"zero amount", Transaction{Type: Deposit, Amount: decimal.Zero, ToAccountID: &a}, false},
		{"unknown type", Transaction{Type: "Refund", Amount: one, ToAccountID: &a}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.txn.CheckShape()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrMalformedTransaction)
			}
		})
	}
}

func TestTransactionInvolves(t *testing.T) {
	a, b := uint(1), uint(2)
	txn := Transaction{Type: Transfer, FromAccountID: &a, ToAccountID: &b}
	assert.True(t, txn.Involves(2))
	assert.True(t, txn.Involves(5, 1))
	assert.False(t, txn.Involves(3))

	deposit := Transaction{Type: Deposit, ToAccountID: &b}
	assert.False(t, deposit.Involves(1))
}

func TestAccountTypeValid(t *testing.T) {
	for _, at := range []AccountType{Savings, Checking, Loan} {
		assert.True(t, at.Valid())
	}
	assert.False(t, AccountType("savings").Valid())
}
