package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/uferekalu/finacle-banking/internal/ledger"
	"github.com/uferekalu/finacle-banking/internal/models"
)

// MemoryStore keeps the whole ledger in process. Each account owns a
// one-slot channel used as a lock so acquisition can give up on a timeout or
// a cancelled context.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[uint]*models.Account
	locks    map[uint]chan struct{}
	numbers  map[string]uint
	users    map[uint]*models.User
	emails   map[string]uint
	txns     []models.Transaction
	keys     map[string]models.IdempotencyKey

	nextAccount uint
	nextUser    uint
	lockTimeout time.Duration
	now         func() time.Time
}

func NewMemoryStore(lockTimeout time.Duration) *MemoryStore {
	if lockTimeout <= 0 {
		lockTimeout = 2 * time.Second
	}
	return &MemoryStore{
		accounts:    make(map[uint]*models.Account),
		locks:       make(map[uint]chan struct{}),
		numbers:     make(map[string]uint),
		users:       make(map[uint]*models.User),
		emails:      make(map[string]uint),
		keys:        make(map[string]models.IdempotencyKey),
		lockTimeout: lockTimeout,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) AtomicUpdate(ctx context.Context, accountIDs []uint, fn ledger.UpdateFunc) (*models.Transaction, error) {
	ids := lockOrder(accountIDs)

	s.mu.RLock()
	locks := make([]chan struct{}, 0, len(ids))
	for _, id := range ids {
		l, ok := s.locks[id]
		if !ok {
			s.mu.RUnlock()
			return nil, fmt.Errorf("account %d: %w", id, ledger.ErrNotFound)
		}
		locks = append(locks, l)
	}
	s.mu.RUnlock()

	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()

	held := 0
	defer func() {
		for i := held - 1; i >= 0; i-- {
			<-locks[i]
		}
	}()
	for i, l := range locks {
		select {
		case l <- struct{}{}:
			held++
		case <-timer.C:
			return nil, fmt.Errorf("account %d: %w", ids[i], ledger.ErrBusy)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.RLock()
	work := make(map[uint]*models.Account, len(ids))
	for _, id := range ids {
		cp := *s.accounts[id]
		work[id] = &cp
	}
	s.mu.RUnlock()

	txn, err := fn(work)
	if err != nil {
		return nil, err
	}
	for _, a := range work {
		if err := checkBalance(a); err != nil {
			return nil, err
		}
	}
	if txn != nil {
		if err := checkRecord(txn, work); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, a := range work {
		stored := s.accounts[id]
		if !stored.Balance.Equal(a.Balance) {
			stored.Balance = a.Balance
			stored.UpdatedAt = now
		}
	}
	if txn == nil {
		return nil, nil
	}
	rec := cloneTransaction(*txn)
	rec.ID = uint(len(s.txns) + 1)
	rec.Date = now
	s.txns = append(s.txns, rec)
	out := cloneTransaction(rec)
	return &out, nil
}

func (s *MemoryStore) GetAccount(_ context.Context, id uint) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) CreateAccount(_ context.Context, account *models.Account) error {
	if err := checkBalance(account); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.numbers[account.AccountNumber]; taken {
		return ledger.ErrAlreadyExists
	}
	s.nextAccount++
	now := s.now()
	account.ID = s.nextAccount
	account.CreatedAt, account.UpdatedAt = now, now
	cp := *account
	s.accounts[account.ID] = &cp
	s.locks[account.ID] = make(chan struct{}, 1)
	s.numbers[account.AccountNumber] = account.ID
	return nil
}

func (s *MemoryStore) ListAccounts(_ context.Context, userID uint) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Account{}
	for _, a := range s.accounts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	slices.SortFunc(out, func(a, b models.Account) int { return int(a.ID) - int(b.ID) })
	return out, nil
}

func (s *MemoryStore) GetTransaction(_ context.Context, id uint) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id == 0 || int(id) > len(s.txns) {
		return nil, ledger.ErrNotFound
	}
	t := cloneTransaction(s.txns[id-1])
	return &t, nil
}

// ListTransactions returns matches newest first.
func (s *MemoryStore) ListTransactions(_ context.Context, filter ledger.TransactionFilter) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Transaction{}
	for i := len(s.txns) - 1; i >= 0; i-- {
		t := &s.txns[i]
		if filter.AccountIDs != nil && !t.Involves(filter.AccountIDs...) {
			continue
		}
		out = append(out, cloneTransaction(*t))
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	email := user.Email
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.emails[email]; taken {
		return ledger.ErrAlreadyExists
	}
	s.nextUser++
	now := s.now()
	user.ID = s.nextUser
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	s.users[user.ID] = &cp
	s.emails[email] = user.ID
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *MemoryStore) LookupIdempotencyKey(_ context.Context, key string) (*models.IdempotencyKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.keys[key]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	rec.Body = slices.Clone(rec.Body)
	return &rec, nil
}

// SaveIdempotencyKey keeps the first record stored under a key.
func (s *MemoryStore) SaveIdempotencyKey(_ context.Context, rec *models.IdempotencyKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[rec.Key]; ok {
		return nil
	}
	cp := *rec
	cp.Body = slices.Clone(rec.Body)
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	s.keys[rec.Key] = cp
	return nil
}

func (s *MemoryStore) Close() error { return nil }
