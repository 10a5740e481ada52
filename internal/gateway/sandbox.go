// Package gateway holds payment gateway implementations used by the ledger
// engine.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Tokens and destinations recognised by the sandbox.
const (
	DeclinedToken       = "pm_card_chargeDeclined"
	declinePrefix       = "tok_decline"
	failingPayoutPrefix = "acct_fail"
	chargeIDPrefix      = "ch_"
	payoutIDPrefix      = "po_"
)

var (
	ErrCardDeclined  = errors.New("card declined")
	ErrPayoutRefused = errors.New("payout refused by destination")
)

// Sandbox is a deterministic gateway for development and tests. It accepts
// every charge and payout except the well-known failing inputs.
type Sandbox struct {
	latency time.Duration
	log     *zap.Logger
}

func NewSandbox(latency time.Duration, log *zap.Logger) *Sandbox {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sandbox{latency: latency, log: log}
}

func (s *Sandbox) Charge(ctx context.Context, token string, amount decimal.Decimal) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	token = strings.TrimSpace(token)
	if token == "" || token == DeclinedToken || strings.HasPrefix(token, declinePrefix) {
		return "", fmt.Errorf("charge %s: %w", amount.StringFixed(2), ErrCardDeclined)
	}
	id := chargeIDPrefix + uuid.NewString()
	s.log.Debug("sandbox charge", zap.String("charge_id", id), zap.String("amount", amount.StringFixed(2)))
	return id, nil
}

func (s *Sandbox) Payout(ctx context.Context, destination string, amount decimal.Decimal) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	destination = strings.TrimSpace(destination)
	if destination == "" || strings.HasPrefix(destination, failingPayoutPrefix) {
		return "", fmt.Errorf("payout %s to %q: %w", amount.StringFixed(2), destination, ErrPayoutRefused)
	}
	id := payoutIDPrefix + uuid.NewString()
	s.log.Debug("sandbox payout", zap.String("payout_id", id), zap.String("amount", amount.StringFixed(2)))
	return id, nil
}

func (s *Sandbox) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
