package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/uferekalu/finacle-banking/internal/models"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

type Options struct {
	// MaxAttempts bounds AtomicUpdate calls per ledger write when the store
	// reports ErrBusy.
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// WriteTimeout bounds ledger writes that follow a gateway call. Those
	// writes ignore caller cancellation.
	WriteTimeout time.Duration

	// GatewayTimeout bounds a single Charge or Payout. Gateway calls ignore
	// caller cancellation too: once issued, their outcome must be observed.
	GatewayTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxAttempts:    5,
		InitialBackoff: 20 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
		WriteTimeout:   5 * time.Second,
		GatewayTimeout: 30 * time.Second,
	}
}

// Engine executes deposits, withdrawals and transfers against a Store.
type Engine struct {
	store   Store
	users   Directory
	gateway PaymentGateway
	log     *zap.Logger
	opts    Options
}

func NewEngine(store Store, users Directory, gateway PaymentGateway, log *zap.Logger, opts Options) *Engine {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultOptions().WriteTimeout
	}
	if opts.GatewayTimeout <= 0 {
		opts.GatewayTimeout = DefaultOptions().GatewayTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: store, users: users, gateway: gateway, log: log, opts: opts}
}

type DepositResult struct {
	Transaction       *models.Transaction
	ConfirmationToken string
	Message           string
}

type WithdrawalResult struct {
	Transaction *models.Transaction
	PayoutID    string
	Message     string
}

type TransferResult struct {
	Transaction *models.Transaction
	Message     string
}

// Deposit charges the payment method and, only once the charge is confirmed,
// credits the account and records the transaction in one atomic unit.
func (e *Engine) Deposit(ctx context.Context, req DepositRequest) (*DepositResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	acc, err := e.resolve(ctx, req.AccountID, req.ActorID)
	if err != nil {
		return nil, err
	}
	if acc.Balance.Add(req.Amount).GreaterThan(MaxBalance) {
		return nil, fmt.Errorf("account %d: %w", acc.ID, ErrBalanceLimit)
	}
	owner := e.ownerName(ctx, acc)

	gctx, gcancel := e.gatewayContext(ctx)
	confirmation, err := e.gateway.Charge(gctx, req.PaymentMethodToken, req.Amount)
	gcancel()
	if err != nil {
		if isContextErr(err) {
			e.log.Error("deposit charge outcome unknown",
				zap.Uint("account_id", acc.ID),
				zap.String("amount", req.Amount.StringFixed(Scale)),
				zap.Error(err))
			return nil, fmt.Errorf("%w: charge: %w", ErrGatewayOutcomeUnknown, err)
		}
		e.log.Info("deposit charge declined", zap.Uint("account_id", acc.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPaymentDeclined, err)
	}

	// The charge is real from here on; the credit must not be abandoned.
	wctx, cancel := e.detached(ctx)
	defer cancel()

	txn, err := e.update(wctx, []uint{acc.ID}, func(accounts map[uint]*models.Account) (*models.Transaction, error) {
		a := accounts[acc.ID]
		a.Balance = a.Balance.Add(req.Amount)
		return &models.Transaction{
			Type:        models.Deposit,
			Amount:      req.Amount,
			ToAccountID: &acc.ID,
			Reference:   confirmation,
		}, nil
	})
	if err != nil {
		e.log.Error("deposit charged but not recorded",
			zap.Uint("account_id", acc.ID),
			zap.String("amount", req.Amount.StringFixed(Scale)),
			zap.String("confirmation", confirmation),
			zap.Error(err))
		return nil, &ReconcileError{Kind: ErrLedgerWriteFailedAfterCharge, Reference: confirmation, Err: err}
	}
	e.committed(txn)

	return &DepositResult{
		Transaction:       txn,
		ConfirmationToken: confirmation,
		Message:           fmt.Sprintf("Successfully deposited %s to %s's account", req.Amount.StringFixed(Scale), owner),
	}, nil
}

// Withdrawal reserves the amount, pays it out and records the transaction. A
// failed payout restores the reservation.
func (e *Engine) Withdrawal(ctx context.Context, req WithdrawalRequest) (*WithdrawalResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	acc, err := e.resolve(ctx, req.AccountID, req.ActorID)
	if err != nil {
		return nil, err
	}
	owner := e.ownerName(ctx, acc)
	ids := []uint{acc.ID}

	_, err = e.update(ctx, ids, func(accounts map[uint]*models.Account) (*models.Transaction, error) {
		a := accounts[acc.ID]
		if a.Balance.LessThan(req.Amount) {
			return nil, ErrInsufficientBalance
		}
		a.Balance = a.Balance.Sub(req.Amount)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	gctx, gcancel := e.gatewayContext(ctx)
	payoutID, payoutErr := e.gateway.Payout(gctx, acc.PayoutDestination, req.Amount)
	gcancel()

	if payoutErr != nil && isContextErr(payoutErr) {
		// The reservation stays in place until the payout is reconciled.
		e.log.Error("withdrawal payout outcome unknown, funds stay reserved",
			zap.Uint("account_id", acc.ID),
			zap.String("amount", req.Amount.StringFixed(Scale)),
			zap.String("destination", acc.PayoutDestination),
			zap.Error(payoutErr))
		return nil, fmt.Errorf("%w: payout: %w", ErrGatewayOutcomeUnknown, payoutErr)
	}

	wctx, cancel := e.detached(ctx)
	defer cancel()

	if payoutErr != nil {
		_, err := e.update(wctx, ids, func(accounts map[uint]*models.Account) (*models.Transaction, error) {
			a := accounts[acc.ID]
			a.Balance = a.Balance.Add(req.Amount)
			return nil, nil
		})
		if err != nil {
			e.log.Error("withdrawal reservation not restored",
				zap.Uint("account_id", acc.ID),
				zap.String("amount", req.Amount.StringFixed(Scale)),
				zap.NamedError("payout_error", payoutErr),
				zap.Error(err))
			return nil, &ReconcileError{Kind: ErrCompensationFailed, Err: fmt.Errorf("payout: %v: %w", payoutErr, err)}
		}
		e.log.Info("withdrawal payout failed, reservation restored", zap.Uint("account_id", acc.ID), zap.Error(payoutErr))
		return nil, fmt.Errorf("%w: %w", ErrPayoutFailed, payoutErr)
	}

	txn, err := e.update(wctx, ids, func(map[uint]*models.Account) (*models.Transaction, error) {
		return &models.Transaction{
			Type:          models.Withdrawal,
			Amount:        req.Amount,
			FromAccountID: &acc.ID,
			Reference:     payoutID,
		}, nil
	})
	if err != nil {
		e.log.Error("withdrawal paid out but not recorded",
			zap.Uint("account_id", acc.ID),
			zap.String("amount", req.Amount.StringFixed(Scale)),
			zap.String("payout_id", payoutID),
			zap.Error(err))
		return nil, &ReconcileError{Kind: ErrLedgerWriteFailedAfterPayout, Reference: payoutID, Err: err}
	}
	e.committed(txn)

	return &WithdrawalResult{
		Transaction: txn,
		PayoutID:    payoutID,
		Message:     fmt.Sprintf("Successfully withdrew %s from %s's account", req.Amount.StringFixed(Scale), owner),
	}, nil
}

// Transfer debits one account and credits another in a single atomic unit.
func (e *Engine) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	from, err := e.resolve(ctx, req.FromAccountID, req.ActorID)
	if err != nil {
		return nil, err
	}
	to, err := e.resolve(ctx, req.ToAccountID, 0)
	if err != nil {
		return nil, err
	}

	txn, err := e.update(ctx, []uint{from.ID, to.ID}, func(accounts map[uint]*models.Account) (*models.Transaction, error) {
		src, dst := accounts[from.ID], accounts[to.ID]
		if src.Balance.LessThan(req.Amount) {
			return nil, ErrInsufficientBalance
		}
		src.Balance = src.Balance.Sub(req.Amount)
		dst.Balance = dst.Balance.Add(req.Amount)
		return &models.Transaction{
			Type:          models.Transfer,
			Amount:        req.Amount,
			FromAccountID: &from.ID,
			ToAccountID:   &to.ID,
		}, nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) {
			return nil, err
		}
		e.log.Warn("transfer aborted", zap.Uint("from", from.ID), zap.Uint("to", to.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrTransferAborted, err)
	}
	e.committed(txn)

	return &TransferResult{
		Transaction: txn,
		Message: fmt.Sprintf("An amount of %s was transferred from %s to %s",
			req.Amount.StringFixed(Scale), e.ownerName(ctx, from), e.ownerName(ctx, to)),
	}, nil
}

// OpenAccount creates an account for an existing user.
func (e *Engine) OpenAccount(ctx context.Context, req OpenAccountRequest) (*models.Account, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := e.users.GetUser(ctx, req.UserID); err != nil {
		return nil, fmt.Errorf("user %d: %w", req.UserID, err)
	}
	acc := &models.Account{
		AccountNumber:     req.AccountNumber,
		AccountType:       req.AccountType,
		Balance:           req.Balance,
		UserID:            req.UserID,
		PayoutDestination: req.PayoutDestination,
	}
	if err := e.store.CreateAccount(ctx, acc); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, fmt.Errorf("account with account number %s: %w", req.AccountNumber, err)
		}
		return nil, err
	}
	e.log.Info("account opened",
		zap.Uint("account_id", acc.ID),
		zap.Uint("user_id", acc.UserID),
		zap.String("type", string(acc.AccountType)))
	return acc, nil
}

// Account returns the account if actor owns it. Accounts of other users are
// reported as not found.
func (e *Engine) Account(ctx context.Context, id, actor uint) (*models.Account, error) {
	acc, err := e.resolve(ctx, id, actor)
	if errors.Is(err, ErrForbidden) {
		return nil, fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	return acc, err
}

func (e *Engine) Accounts(ctx context.Context, userID uint) ([]models.Account, error) {
	return e.store.ListAccounts(ctx, userID)
}

// History lists the transactions of one account, newest first.
func (e *Engine) History(ctx context.Context, accountID, actor uint, limit int) ([]models.Transaction, error) {
	if _, err := e.Account(ctx, accountID, actor); err != nil {
		return nil, err
	}
	return e.store.ListTransactions(ctx, TransactionFilter{AccountIDs: []uint{accountID}, Limit: pageSize(limit)})
}

// Transactions lists every transaction touching an account of actor. A zero
// actor lists the whole ledger.
func (e *Engine) Transactions(ctx context.Context, actor uint, limit int) ([]models.Transaction, error) {
	filter := TransactionFilter{Limit: pageSize(limit)}
	if actor != 0 {
		accounts, err := e.store.ListAccounts(ctx, actor)
		if err != nil {
			return nil, err
		}
		if len(accounts) == 0 {
			return []models.Transaction{}, nil
		}
		for _, a := range accounts {
			filter.AccountIDs = append(filter.AccountIDs, a.ID)
		}
	}
	return e.store.ListTransactions(ctx, filter)
}

// Transaction returns a transaction visible to actor.
func (e *Engine) Transaction(ctx context.Context, id, actor uint) (*models.Transaction, error) {
	txn, err := e.store.GetTransaction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("transaction %d: %w", id, err)
	}
	if actor == 0 {
		return txn, nil
	}
	for _, ref := range []*uint{txn.FromAccountID, txn.ToAccountID} {
		if ref == nil {
			continue
		}
		acc, err := e.store.GetAccount(ctx, *ref)
		if err == nil && acc.UserID == actor {
			return txn, nil
		}
	}
	return nil, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
}

// update runs AtomicUpdate, retrying lock contention with exponential backoff.
func (e *Engine) update(ctx context.Context, ids []uint, fn UpdateFunc) (*models.Transaction, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = e.opts.InitialBackoff
	policy.MaxInterval = e.opts.MaxBackoff
	policy.MaxElapsedTime = 0

	op := func() (*models.Transaction, error) {
		txn, err := e.store.AtomicUpdate(ctx, ids, fn)
		if err != nil && !errors.Is(err, ErrBusy) {
			return nil, backoff.Permanent(err)
		}
		return txn, err
	}
	notify := func(err error, wait time.Duration) {
		e.log.Debug("ledger busy, retrying", zap.Uints("accounts", ids), zap.Duration("wait", wait), zap.Error(err))
	}
	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(e.opts.MaxAttempts-1)), ctx)
	return backoff.RetryNotifyWithData(op, b, notify)
}

func (e *Engine) detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), e.opts.WriteTimeout)
}

func (e *Engine) gatewayContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), e.opts.GatewayTimeout)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (e *Engine) resolve(ctx context.Context, id, actor uint) (*models.Account, error) {
	acc, err := e.store.GetAccount(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("account %d: %w", id, err)
	}
	if actor != 0 && acc.UserID != actor {
		return nil, fmt.Errorf("account %d: %w", id, ErrForbidden)
	}
	return acc, nil
}

func (e *Engine) ownerName(ctx context.Context, acc *models.Account) string {
	u, err := e.users.GetUser(ctx, acc.UserID)
	if err != nil {
		e.log.Warn("account owner lookup failed", zap.Uint("account_id", acc.ID), zap.Error(err))
		return "account " + acc.AccountNumber
	}
	return u.Name
}

func (e *Engine) committed(txn *models.Transaction) {
	fields := []zap.Field{
		zap.Uint("tx_id", txn.ID),
		zap.String("type", string(txn.Type)),
		zap.String("amount", txn.Amount.StringFixed(Scale)),
	}
	if txn.FromAccountID != nil {
		fields = append(fields, zap.Uint("from", *txn.FromAccountID))
	}
	if txn.ToAccountID != nil {
		fields = append(fields, zap.Uint("to", *txn.ToAccountID))
	}
	e.log.Info("ledger movement committed", fields...)
}

func pageSize(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
