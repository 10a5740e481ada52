package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/uferekalu/finacle-banking/internal/models"
)

// Scale is the number of fractional digits every amount and balance carries.
const Scale = 2

// MaxAmount bounds a single movement.
var MaxAmount = decimal.RequireFromString("99999999.99")

// MaxBalance is the largest balance an account column can hold.
var MaxBalance = decimal.RequireFromString("999999999999.99")

type DepositRequest struct {
	AccountID          uint            `json:"accountId"`
	Amount             decimal.Decimal `json:"amount"`
	PaymentMethodToken string          `json:"paymentMethodToken"`

	// ActorID is the authenticated caller; zero skips the ownership check.
	ActorID uint `json:"-"`
}

func (r DepositRequest) Validate() error {
	if r.AccountID == 0 {
		return invalid("accountId", "is required")
	}
	if err := checkAmount("amount", r.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(r.PaymentMethodToken) == "" {
		return invalid("paymentMethodToken", "is required")
	}
	return nil
}

type WithdrawalRequest struct {
	AccountID uint            `json:"accountId"`
	Amount    decimal.Decimal `json:"amount"`
	ActorID   uint            `json:"-"`
}

func (r WithdrawalRequest) Validate() error {
	if r.AccountID == 0 {
		return invalid("accountId", "is required")
	}
	return checkAmount("amount", r.Amount)
}

type TransferRequest struct {
	FromAccountID uint            `json:"fromAccountId"`
	ToAccountID   uint            `json:"toAccountId"`
	Amount        decimal.Decimal `json:"amount"`
	ActorID       uint            `json:"-"`
}

func (r TransferRequest) Validate() error {
	if r.FromAccountID == 0 {
		return invalid("fromAccountId", "is required")
	}
	if r.ToAccountID == 0 {
		return invalid("toAccountId", "is required")
	}
	if r.FromAccountID == r.ToAccountID {
		return invalid("toAccountId", "must differ from fromAccountId")
	}
	return checkAmount("amount", r.Amount)
}

type OpenAccountRequest struct {
	AccountNumber     string             `json:"accountNumber"`
	AccountType       models.AccountType `json:"accountType"`
	Balance           decimal.Decimal    `json:"balance"`
	PayoutDestination string             `json:"payoutDestination"`
	UserID            uint               `json:"-"`
}

func (r OpenAccountRequest) Validate() error {
	if n := len(r.AccountNumber); n < 8 || n > 10 {
		return invalid("accountNumber", "must be 8 to 10 characters")
	}
	if !r.AccountType.Valid() {
		return invalid("accountType", "must be one of Savings, Checking, Loan")
	}
	if r.Balance.IsNegative() {
		return invalid("balance", "must not be negative")
	}
	if !hasScale(r.Balance) {
		return invalid("balance", "must have at most 2 decimal places")
	}
	if r.Balance.GreaterThan(MaxBalance) {
		return invalid("balance", "must not exceed "+MaxBalance.StringFixed(Scale))
	}
	if strings.TrimSpace(r.PayoutDestination) == "" {
		return invalid("payoutDestination", "is required")
	}
	if r.UserID == 0 {
		return invalid("userId", "is required")
	}
	return nil
}

func checkAmount(field string, amount decimal.Decimal) error {
	switch {
	case !amount.IsPositive():
		return invalid(field, "must be greater than 0")
	case !hasScale(amount):
		return invalid(field, "must have at most 2 decimal places")
	case amount.GreaterThan(MaxAmount):
		return invalid(field, "must not exceed "+MaxAmount.StringFixed(Scale))
	}
	return nil
}

// hasScale rejects amounts that would need rounding to fit the ledger.
func hasScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(Scale))
}
