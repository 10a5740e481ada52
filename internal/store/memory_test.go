package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uferekalu/finacle-banking/internal/ledger"
	"github.com/uferekalu/finacle-banking/internal/models"
)

func openAccount(t *testing.T, s *MemoryStore, number, balance string) *models.Account {
	t.Helper()
	acc := &models.Account{
		AccountNumber:     number,
		AccountType:       models.Checking,
		Balance:           decimal.RequireFromString(balance),
		UserID:            1,
		PayoutDestination: "acct_" + number,
	}
	require.NoError(t, s.CreateAccount(context.Background(), acc))
	return acc
}

func balanceOf(t *testing.T, s *MemoryStore, id uint) string {
	t.Helper()
	acc, err := s.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return acc.Balance.StringFixed(2)
}

func TestMemoryStoreCreateAccount(t *testing.T) {
	s := NewMemoryStore(time.Second)
	a := openAccount(t, s, "10000001", "100")
	b := openAccount(t, s, "10000002", "50")

	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.CreatedAt.IsZero())

	err := s.CreateAccount(context.Background(), &models.Account{AccountNumber: "10000001"})
	assert.ErrorIs(t, err, ledger.ErrAlreadyExists)

	_, err = s.GetAccount(context.Background(), 99)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	list, err := s.ListAccounts(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
}

func TestMemoryStoreAtomicUpdateCommits(t *testing.T) {
	s := NewMemoryStore(time.Second)
	a := openAccount(t, s, "10000001", "100")
	b := openAccount(t, s, "10000002", "50")
	amount := decimal.RequireFromString("30")

	txn, err := s.AtomicUpdate(context.Background(), []uint{b.ID, a.ID}, func(m map[uint]*models.Account) (*models.Transaction, error) {
		m[a.ID].Balance = m[a.ID].Balance.Sub(amount)
		m[b.ID].Balance = m[b.ID].Balance.Add(amount)
		return &models.Transaction{Type: models.Transfer, Amount: amount, FromAccountID: &a.ID, ToAccountID: &b.ID}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint(1), txn.ID)
	assert.False(t, txn.Date.IsZero())

	assert.Equal(t, "70.00", balanceOf(t, s, a.ID))
	assert.Equal(t, "80.00", balanceOf(t, s, b.ID))

	got, err := s.GetTransaction(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Transfer, got.Type)
	assert.True(t, got.Amount.Equal(amount))
}

func TestMemoryStoreAtomicUpdateRollsBack(t *testing.T) {
	s := NewMemoryStore(time.Second)
	a := openAccount(t, s, "10000001", "100")
	boom := errors.New("boom")

	_, err := s.AtomicUpdate(context.Background(), []uint{a.ID}, func(m map[uint]*models.Account) (*models.Transaction, error) {
		m[a.ID].Balance = decimal.Zero
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "100.00", balanceOf(t, s, a.ID))

	_, err = s.AtomicUpdate(context.Background(), []uint{a.ID}, func(m map[uint]*models.Account) (*models.Transaction, error) {
		m[a.ID].Balance = decimal.RequireFromString("-1")
		return nil, nil
	})
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	assert.Equal(t, "100.00", balanceOf(t, s, a.ID))

	// a record may not reference an account outside the locked set
	other := uint(42)
	_, err = s.AtomicUpdate(context.Background(), []uint{a.ID}, func(m map[uint]*models.Account) (*models.Transaction, error) {
		m[a.ID].Balance = decimal.Zero
		return &models.Transaction{Type: models.Transfer, Amount: decimal.NewFromInt(100), FromAccountID: &a.ID, ToAccountID: &other}, nil
	})
	assert.ErrorIs(t, err, models.ErrMalformedTransaction)
	assert.Equal(t, "100.00", balanceOf(t, s, a.ID))

	txns, err := s.ListTransactions(context.Background(), ledger.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestMemoryStoreBalanceCeiling(t *testing.T) {
	s := NewMemoryStore(time.Second)
	a := openAccount(t, s, "10000001", "999999999999.00")

	_, err := s.AtomicUpdate(context.Background(), []uint{a.ID}, func(m map[uint]*models.Account) (*models.Transaction, error) {
		m[a.ID].Balance = m[a.ID].Balance.Add(decimal.NewFromInt(1))
		return nil, nil
	})
	assert.ErrorIs(t, err, ledger.ErrBalanceLimit)
	assert.ErrorIs(t, err, ledger.ErrValidation)
	assert.Equal(t, "999999999999.00", balanceOf(t, s, a.ID))

	err = s.CreateAccount(context.Background(), &models.Account{
		AccountNumber: "10000002",
		Balance:       decimal.RequireFromString("1000000000000.00"),
	})
	assert.ErrorIs(t, err, ledger.ErrBalanceLimit)
}

func TestMemoryStoreAtomicUpdateUnknownAccount(t *testing.T) {
	s := NewMemoryStore(time.Second)
	a := openAccount(t, s, "10000001", "100")

	called := false
	_, err := s.AtomicUpdate(context.Background(), []uint{a.ID, 7}, func(map[uint]*models.Account) (*models.Transaction, error) {
		called = true
		return nil, nil
	})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	assert.False(t, called)
}

func TestMemoryStoreLockTimeout(t *testing.T) {
	s := NewMemoryStore(20 * time.Millisecond)
	a := openAccount(t, s, "10000001", "100")

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := s.AtomicUpdate(context.Background(), []uint{a.ID}, func(map[uint]*models.Account) (*models.Transaction, error) {
			close(entered)
			<-release
			return nil, nil
		})
		done <- err
	}()
	<-entered

	_, err := s.AtomicUpdate(context.Background(), []uint{a.ID}, func(map[uint]*models.Account) (*models.Transaction, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, ledger.ErrBusy)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.AtomicUpdate(ctx, []uint{a.ID}, func(map[uint]*models.Account) (*models.Transaction, error) {
		return nil, nil
	})
	assert.Error(t, err)

	close(release)
	require.NoError(t, <-done)
}

func TestMemoryStoreConcurrentTransfersConserveMoney(t *testing.T) {
	s := NewMemoryStore(5 * time.Second)
	a := openAccount(t, s, "10000001", "1000")
	b := openAccount(t, s, "10000002", "1000")
	one := decimal.NewFromInt(1)

	move := func(from, to uint) {
		_, err := s.AtomicUpdate(context.Background(), []uint{from, to}, func(m map[uint]*models.Account) (*models.Transaction, error) {
			if m[from].Balance.LessThan(one) {
				return nil, ledger.ErrInsufficientBalance
			}
			m[from].Balance = m[from].Balance.Sub(one)
			m[to].Balance = m[to].Balance.Add(one)
			return &models.Transaction{Type: models.Transfer, Amount: one, FromAccountID: &from, ToAccountID: &to}, nil
		})
		assert.NoError(t, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); move(a.ID, b.ID) }()
		go func() { defer wg.Done(); move(b.ID, a.ID) }()
	}
	wg.Wait()

	assert.Equal(t, "1000.00", balanceOf(t, s, a.ID))
	assert.Equal(t, "1000.00", balanceOf(t, s, b.ID))

	txns, err := s.ListTransactions(context.Background(), ledger.TransactionFilter{AccountIDs: []uint{a.ID}})
	require.NoError(t, err)
	assert.Len(t, txns, 200)
}

func TestMemoryStoreListTransactions(t *testing.T) {
	s := NewMemoryStore(time.Second)
	a := openAccount(t, s, "10000001", "0")
	b := openAccount(t, s, "10000002", "0")

	deposit := func(id uint) {
		_, err := s.AtomicUpdate(context.Background(), []uint{id}, func(m map[uint]*models.Account) (*models.Transaction, error) {
			m[id].Balance = m[id].Balance.Add(decimal.NewFromInt(5))
			return &models.Transaction{Type: models.Deposit, Amount: decimal.NewFromInt(5), ToAccountID: &id}, nil
		})
		require.NoError(t, err)
	}
	deposit(a.ID)
	deposit(b.ID)
	deposit(a.ID)

	all, err := s.ListTransactions(context.Background(), ledger.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, uint(3), all[0].ID, "newest first")

	onlyA, err := s.ListTransactions(context.Background(), ledger.TransactionFilter{AccountIDs: []uint{a.ID}, Limit: 1})
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	assert.Equal(t, uint(3), onlyA[0].ID)

	none, err := s.ListTransactions(context.Background(), ledger.TransactionFilter{AccountIDs: []uint{}})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = s.GetTransaction(context.Background(), 9)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestMemoryStoreUsers(t *testing.T) {
	s := NewMemoryStore(time.Second)
	u := &models.User{Name: "Ada Lovelace", Email: "Ada@Example.com", Password: "hash"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	assert.Equal(t, uint(1), u.ID)

	err := s.CreateUser(context.Background(), &models.User{Name: "Other", Email: "ada@example.com"})
	assert.ErrorIs(t, err, ledger.ErrAlreadyExists)

	got, err := s.GetUserByEmail(context.Background(), "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.GetUser(context.Background(), 2)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestMemoryStoreIdempotencyKeys(t *testing.T) {
	s := NewMemoryStore(time.Second)
	ctx := context.Background()

	_, err := s.LookupIdempotencyKey(ctx, "1:/transactions:k")
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	require.NoError(t, s.SaveIdempotencyKey(ctx, &models.IdempotencyKey{Key: "1:/transactions:k", Status: 201, Body: []byte(`{"a":1}`)}))
	require.NoError(t, s.SaveIdempotencyKey(ctx, &models.IdempotencyKey{Key: "1:/transactions:k", Status: 500, Body: []byte(`{}`)}))

	rec, err := s.LookupIdempotencyKey(ctx, "1:/transactions:k")
	require.NoError(t, err)
	assert.Equal(t, 201, rec.Status)
	assert.JSONEq(t, `{"a":1}`, string(rec.Body))
}
