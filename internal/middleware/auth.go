package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/uferekalu/finacle-banking/internal/httputil"
	"github.com/uferekalu/finacle-banking/internal/logger"
	"go.uber.org/zap"
)

const kindUnauthorized = "unauthorized"

type TokenParser interface {
	ParseToken(token string) (userID uint, err error)
}

type userIDKey struct{}

func WithUserID(ctx context.Context, id uint) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// UserIDFrom returns the authenticated user stored by Authenticated.
func UserIDFrom(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userIDKey{}).(uint)
	return id, ok && id != 0
}

// Authenticated requires a valid bearer token and stores its subject in the
// request context.
func Authenticated(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.WriteError(w, http.StatusUnauthorized, kindUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				httputil.WriteError(w, http.StatusUnauthorized, kindUnauthorized, "invalid authorization header")
				return
			}

			userID, err := tokens.ParseToken(strings.TrimSpace(parts[1]))
			if err != nil {
				logger.Log.Debug("token rejected", zap.Error(err))
				httputil.WriteError(w, http.StatusUnauthorized, kindUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
