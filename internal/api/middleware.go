/**
 * @description
 * Bearer-token authentication middleware. A valid access token puts the
 * caller's user id into the request context.
 */
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/subtrack/subscription-service/internal/domain"
)

// TokenVerifier validates an access token and returns the user id it carries.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// AccountChecker resolves a user id to an active account. It reports
// domain.ErrNotFound for unknown or deactivated users.
type AccountChecker interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

type contextKey string

const userIDContextKey = contextKey("userID")

// AuthMiddleware rejects requests without a valid "Authorization: Bearer" token.
// When accounts is set, tokens of deactivated users are rejected as well.
func AuthMiddleware(verifier TokenVerifier, accounts AccountChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				respondError(w, http.StatusUnauthorized, "Authorization header required", nil)
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "Invalid or expired token", nil)
				return
			}

			if accounts != nil {
				if _, err := accounts.GetUser(r.Context(), userID); err != nil {
					if errors.Is(err, domain.ErrNotFound) {
						respondError(w, http.StatusUnauthorized, "Account is inactive or no longer exists", nil)
						return
					}
					respondError(w, http.StatusInternalServerError, "Internal server error", nil)
					return
				}
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[len("Bearer "):])
	return token, token != ""
}

// UserFromContext returns the authenticated user id set by AuthMiddleware.
func UserFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	return userID, ok
}
