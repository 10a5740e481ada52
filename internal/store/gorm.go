package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/uferekalu/finacle-banking/internal/ledger"
	"github.com/uferekalu/finacle-banking/internal/models"
)

// GormStore persists the ledger in PostgreSQL. Account rows are locked with
// SELECT ... FOR UPDATE inside one database transaction per AtomicUpdate.
type GormStore struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewGormStore(db *gorm.DB, lockTimeout time.Duration) *GormStore {
	return &GormStore{db: db, lockTimeout: lockTimeout}
}

func (s *GormStore) AtomicUpdate(ctx context.Context, accountIDs []uint, fn ledger.UpdateFunc) (*models.Transaction, error) {
	ids := lockOrder(accountIDs)
	var out *models.Transaction

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.lockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", s.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}

		work := make(map[uint]*models.Account, len(ids))
		before := make(map[uint]decimal.Decimal, len(ids))
		for _, id := range ids {
			var acc models.Account
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&acc, id).Error; err != nil {
				return fmt.Errorf("account %d: %w", id, err)
			}
			work[id] = &acc
			before[id] = acc.Balance
		}

		txn, err := fn(work)
		if err != nil {
			return err
		}

		for _, id := range ids {
			a := work[id]
			if a.Balance.Equal(before[id]) {
				continue
			}
			if err := checkBalance(a); err != nil {
				return err
			}
			if err := tx.Model(&models.Account{}).Where("id = ?", id).Update("balance", a.Balance).Error; err != nil {
				return err
			}
		}

		if txn == nil {
			return nil
		}
		if err := checkRecord(txn, work); err != nil {
			return err
		}
		rec := cloneTransaction(*txn)
		rec.ID = 0
		rec.Date = time.Now().UTC()
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		out = &rec
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *GormStore) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	var acc models.Account
	if err := s.db.WithContext(ctx).First(&acc, id).Error; err != nil {
		return nil, translate(err)
	}
	return &acc, nil
}

func (s *GormStore) CreateAccount(ctx context.Context, account *models.Account) error {
	return translate(s.db.WithContext(ctx).Create(account).Error)
}

func (s *GormStore) ListAccounts(ctx context.Context, userID uint) ([]models.Account, error) {
	accounts := []models.Account{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&accounts).Error; err != nil {
		return nil, translate(err)
	}
	return accounts, nil
}

func (s *GormStore) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.db.WithContext(ctx).First(&txn, id).Error; err != nil {
		return nil, translate(err)
	}
	return &txn, nil
}

// ListTransactions returns matches newest first.
func (s *GormStore) ListTransactions(ctx context.Context, filter ledger.TransactionFilter) ([]models.Transaction, error) {
	q := s.db.WithContext(ctx).Model(&models.Transaction{}).Order("date DESC, id DESC")
	if filter.AccountIDs != nil {
		if len(filter.AccountIDs) == 0 {
			return []models.Transaction{}, nil
		}
		q = q.Where("from_account_id IN ? OR to_account_id IN ?", filter.AccountIDs, filter.AccountIDs)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	txns := []models.Transaction{}
	if err := q.Find(&txns).Error; err != nil {
		return nil, translate(err)
	}
	return txns, nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) LookupIdempotencyKey(ctx context.Context, key string) (*models.IdempotencyKey, error) {
	var rec models.IdempotencyKey
	if err := s.db.WithContext(ctx).Where("key = ?", key).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

// SaveIdempotencyKey keeps the first record stored under a key.
func (s *GormStore) SaveIdempotencyKey(ctx context.Context, rec *models.IdempotencyKey) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(rec).Error
	return translate(err)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
