package middleware

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/uferekalu/finacle-banking/internal/httputil"
	"github.com/uferekalu/finacle-banking/internal/ledger"
	"github.com/uferekalu/finacle-banking/internal/models"
)

const (
	IdempotencyHeader    = "Idempotency-Key"
	IdempotencyHitHeader = "X-Idempotency-Hit"
	maxIdempotencyKeyLen = 255
)

type IdempotencyStore interface {
	LookupIdempotencyKey(ctx context.Context, key string) (*models.IdempotencyKey, error)
	SaveIdempotencyKey(ctx context.Context, rec *models.IdempotencyKey) error
}

// Idempotency replays the first response produced for an Idempotency-Key.
// Keys are scoped to the caller and the request path. Every status is kept,
// so a request that failed after money moved is never executed twice.
// Concurrent requests sharing a key wait for the first one.
func Idempotency(store IdempotencyStore, log *zap.Logger) func(http.Handler) http.Handler {
	var group singleflight.Group

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxIdempotencyKeyLen {
				httputil.WriteError(w, http.StatusBadRequest, string(ledger.KindValidation),
					fmt.Sprintf("%s must be at most %d characters", IdempotencyHeader, maxIdempotencyKeyLen))
				return
			}
			userID, _ := UserIDFrom(r.Context())
			scoped := fmt.Sprintf("%d:%s:%s", userID, r.URL.Path, key)

			var executed *capture
			v, err, _ := group.Do(scoped, func() (any, error) {
				rec, err := store.LookupIdempotencyKey(r.Context(), scoped)
				if err == nil {
					return rec, nil
				}
				if !errors.Is(err, ledger.ErrNotFound) {
					return nil, err
				}

				c := newCapture()
				next.ServeHTTP(c, r)
				if c.status == 0 {
					c.status = http.StatusOK
				}
				executed = c

				rec = &models.IdempotencyKey{
					Key:       scoped,
					Status:    c.status,
					Body:      c.body.Bytes(),
					CreatedAt: time.Now().UTC(),
				}
				if err := store.SaveIdempotencyKey(context.WithoutCancel(r.Context()), rec); err != nil {
					log.Error("failed to save idempotency key", zap.String("key", scoped), zap.Error(err))
				}
				return rec, nil
			})
			if err != nil {
				log.Error("idempotency lookup failed", zap.String("key", scoped), zap.Error(err))
				httputil.WriteError(w, http.StatusInternalServerError, string(ledger.KindInternal), "internal error")
				return
			}

			if executed != nil {
				executed.flush(w)
				return
			}
			rec := v.(*models.IdempotencyKey)
			log.Info("idempotency hit, replaying response", zap.String("key", scoped), zap.Int("status", rec.Status))
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set(IdempotencyHitHeader, "true")
			w.WriteHeader(rec.Status)
			_, _ = w.Write(rec.Body)
		})
	}
}

// capture buffers a response so it can be stored before it is sent.
type capture struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newCapture() *capture {
	return &capture{header: make(http.Header)}
}

func (c *capture) Header() http.Header { return c.header }

func (c *capture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
}

func (c *capture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	return c.body.Write(b)
}

func (c *capture) flush(w http.ResponseWriter) {
	for k, vs := range c.header {
		w.Header()[k] = vs
	}
	w.WriteHeader(c.status)
	_, _ = w.Write(c.body.Bytes())
}
