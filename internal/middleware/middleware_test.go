package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uferekalu/finacle-banking/internal/store"
)

type stubTokens map[string]uint

func (s stubTokens) ParseToken(token string) (uint, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return 0, errors.New("unknown token")
}

func TestAuthenticated(t *testing.T) {
	h := Authenticated(stubTokens{"good": 7})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFrom(r.Context())
		require.True(t, ok)
		fmt.Fprint(w, id)
	}))

	cases := []struct {
		name   string
		header string
		code   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer good", http.StatusOK},
		{"scheme is case insensitive", "bearer good", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.code, rec.Code)
			if tc.code == http.StatusOK {
				assert.Equal(t, "7", rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), `"error":"unauthorized"`)
			}
		})
	}
}

func TestUserIDFromEmptyContext(t *testing.T) {
	_, ok := UserIDFrom(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}

func idempotentServer(t *testing.T, handler http.HandlerFunc) http.Handler {
	t.Helper()
	s := store.NewMemoryStore(time.Second)
	return Idempotency(s, zap.NewNop())(handler)
}

func post(h http.Handler, user uint, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	req = req.WithContext(WithUserID(req.Context(), user))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIdempotencyReplaysFirstResponse(t *testing.T) {
	var calls atomic.Int32
	h := idempotentServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"call":%d}`, n)
	})

	first := post(h, 1, "/transactions", "abc")
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Empty(t, first.Header().Get(IdempotencyHitHeader))

	second := post(h, 1, "/transactions", "abc")
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(IdempotencyHitHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int32(1), calls.Load())

	// keys are scoped by user and path
	post(h, 2, "/transactions", "abc")
	post(h, 1, "/accounts/deposit", "abc")
	assert.Equal(t, int32(3), calls.Load())

	// no key, no caching
	post(h, 1, "/transactions", "")
	post(h, 1, "/transactions", "")
	assert.Equal(t, int32(5), calls.Load())
}

func TestIdempotencyCachesFailures(t *testing.T) {
	var calls atomic.Int32
	h := idempotentServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"ledger_write_failed_after_charge"}`)
	})

	post(h, 1, "/accounts/deposit", "k1")
	replay := post(h, 1, "/accounts/deposit", "k1")
	assert.Equal(t, http.StatusInternalServerError, replay.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestIdempotencyCollapsesConcurrentRequests(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	h := idempotentServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		w.WriteHeader(http.StatusCreated)
	})

	var wg sync.WaitGroup
	codes := make([]int, 5)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = post(h, 1, "/accounts/withdrawal", "same").Code
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, code := range codes {
		assert.Equal(t, http.StatusCreated, code)
	}
}

func TestIdempotencyRejectsLongKeys(t *testing.T) {
	h := idempotentServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})
	long := make([]byte, maxIdempotencyKeyLen+1)
	for i := range long {
		long[i] = 'k'
	}
	rec := post(h, 1, "/transactions", string(long))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
