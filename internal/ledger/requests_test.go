package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uferekalu/finacle-banking/internal/models"
)

func TestCheckAmount(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"0.01", true},
		{"30", true},
		{"99999999.99", true},
		{"0", false},
		{"-1", false},
		{"1.005", false},
		{"100000000.00", false},
	}
	for _, tc := range cases {
		err := checkAmount("amount", decimal.RequireFromString(tc.in))
		if tc.ok {
			assert.NoError(t, err, tc.in)
			continue
		}
		assert.ErrorIs(t, err, ErrValidation, tc.in)
	}
}

func TestDepositRequestDecodesAmounts(t *testing.T) {
	var req DepositRequest
	require.NoError(t, json.Unmarshal([]byte(`{"accountId":3,"amount":"50.10","paymentMethodToken":"pm_card_visa","ActorID":9}`), &req))
	assert.Equal(t, uint(3), req.AccountID)
	assert.Equal(t, "50.10", req.Amount.StringFixed(Scale))
	assert.Zero(t, req.ActorID, "actor is never read from the body")
	assert.NoError(t, req.Validate())

	require.NoError(t, json.Unmarshal([]byte(`{"accountId":3,"amount":12.5,"paymentMethodToken":"tok"}`), &req))
	assert.Equal(t, "12.50", req.Amount.StringFixed(Scale))
}

func TestRequestValidation(t *testing.T) {
	one := decimal.NewFromInt(1)
	cases := []struct {
		name  string
		req   interface{ Validate() error }
		field string
	}{
		{"deposit without account", DepositRequest{Amount: one, PaymentMethodToken: "t"}, "accountId"},
		{"deposit without token", DepositRequest{AccountID: 1, Amount: one, PaymentMethodToken: " "}, "paymentMethodToken"},
		{"withdrawal without amount", WithdrawalRequest{AccountID: 1}, "amount"},
		{"transfer without source", TransferRequest{ToAccountID: 2, Amount: one}, "fromAccountId"},
		{"transfer to itself", TransferRequest{FromAccountID: 2, ToAccountID: 2, Amount: one}, "toAccountId"},
		{"short account number", OpenAccountRequest{AccountNumber: "1234567", AccountType: models.Savings, PayoutDestination: "d", UserID: 1}, "accountNumber"},
		{"long account number", OpenAccountRequest{AccountNumber: "12345678901", AccountType: models.Savings, PayoutDestination: "d", UserID: 1}, "accountNumber"},
		{"unknown type", OpenAccountRequest{AccountNumber: "12345678", AccountType: "Gold", PayoutDestination: "d", UserID: 1}, "accountType"},
		{"negative opening balance", OpenAccountRequest{AccountNumber: "12345678", AccountType: models.Loan, Balance: decimal.NewFromInt(-1), PayoutDestination: "d", UserID: 1}, "balance"},
		{"sub-cent opening balance", OpenAccountRequest{AccountNumber: "12345678", AccountType: models.Loan, Balance: decimal.RequireFromString("0.005"), PayoutDestination: "d", UserID: 1}, "balance"},
		{"opening balance over ceiling", OpenAccountRequest{AccountNumber: "12345678", AccountType: models.Savings, Balance: decimal.RequireFromString("1000000000000"), PayoutDestination: "d", UserID: 1}, "balance"},
		{"no payout destination", OpenAccountRequest{AccountNumber: "12345678", AccountType: models.Checking, UserID: 1}, "payoutDestination"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	ok := OpenAccountRequest{AccountNumber: "1234567890", AccountType: models.Checking, Balance: decimal.RequireFromString("10.50"), PayoutDestination: "acct_1", UserID: 1}
	assert.NoError(t, ok.Validate())
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		kind Kind
	}{
		{invalid("amount", "must be greater than 0"), KindValidation},
		{fmt.Errorf("account 3: %w", ErrNotFound), KindNotFound},
		{ErrInsufficientBalance, KindInsufficientBalance},
		{fmt.Errorf("%w: %w", ErrPaymentDeclined, errors.New("card declined")), KindPaymentDeclined},
		{ErrBusy, KindConcurrentModification},
		{fmt.Errorf("%w: %w", ErrTransferAborted, ErrBusy), KindTransferAborted},
		{fmt.Errorf("%w (confirmation ch_1): %w", ErrLedgerWriteFailedAfterCharge, ErrNotFound), KindLedgerWriteFailedAfterCharge},
		{fmt.Errorf("%w (payout: x): %w", ErrCompensationFailed, ErrBusy), KindCompensationFailed},
		{&ReconcileError{Kind: ErrLedgerWriteFailedAfterPayout, Reference: "po_1", Err: ErrNotFound}, KindLedgerWriteFailedAfterPayout},
		{fmt.Errorf("%w: charge: %w", ErrGatewayOutcomeUnknown, context.DeadlineExceeded), KindGatewayOutcomeUnknown},
		{fmt.Errorf("account 2: %w", ErrBalanceLimit), KindValidation},
		{errors.New("boom"), KindInternal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.kind, KindOf(tc.err), tc.err.Error())
	}
}

func TestPageSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, pageSize(0))
	assert.Equal(t, 10, pageSize(10))
	assert.Equal(t, MaxPageSize, pageSize(5000))
}
