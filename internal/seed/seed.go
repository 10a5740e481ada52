package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/uferekalu/finacle-banking/internal/auth"
	"github.com/uferekalu/finacle-banking/internal/ledger"
	"github.com/uferekalu/finacle-banking/internal/models"
)

const (
	Password    = "password123"
	seedToken   = "pm_card_visa"
	savingsSeed = "1000.00"
	currentSeed = "500.00"
)

type Users interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

var demoUsers = []struct {
	Name   string
	Email  string
	Prefix string
}{
	{"Test User 1", "user1@test.com", "1000"},
	{"Test User 2", "user2@test.com", "2000"},
	{"Test User 3", "user3@test.com", "3000"},
}

// Run creates the demo users, each with a funded Savings and Checking account.
// Users that already exist are left alone. Balances are funded through
// deposits so every seeded cent has a matching transaction.
func Run(ctx context.Context, users Users, engine *ledger.Engine, log *zap.Logger) error {
	created := 0
	for _, du := range demoUsers {
		_, err := users.GetUserByEmail(ctx, du.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, ledger.ErrNotFound) {
			return fmt.Errorf("look up %s: %w", du.Email, err)
		}

		u, err := auth.NewUser(du.Name, du.Email, Password)
		if err != nil {
			return err
		}
		if err := users.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("create %s: %w", du.Email, err)
		}

		for i, plan := range []struct {
			kind    models.AccountType
			balance string
		}{
			{models.Savings, savingsSeed},
			{models.Checking, currentSeed},
		} {
			acc, err := engine.OpenAccount(ctx, ledger.OpenAccountRequest{
				AccountNumber:     fmt.Sprintf("%s%04d", du.Prefix, i+1),
				AccountType:       plan.kind,
				Balance:           decimal.Zero,
				PayoutDestination: fmt.Sprintf("acct_demo_%d_%d", u.ID, i+1),
				UserID:            u.ID,
			})
			if err != nil {
				return err
			}
			if _, err := engine.Deposit(ctx, ledger.DepositRequest{
				AccountID:          acc.ID,
				Amount:             decimal.RequireFromString(plan.balance),
				PaymentMethodToken: seedToken,
			}); err != nil {
				return fmt.Errorf("fund account %s: %w", acc.AccountNumber, err)
			}
		}
		created++
	}

	if created == 0 {
		log.Info("seed already applied, skipping")
		return nil
	}
	log.Info("seeded demo users", zap.Int("users", created), zap.String("password", Password))
	return nil
}
