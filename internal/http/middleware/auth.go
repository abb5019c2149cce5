package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Sirneij/cryptoflow/internal/domain"
	"github.com/Sirneij/cryptoflow/internal/http/response"
	"github.com/Sirneij/cryptoflow/internal/security"
	"github.com/Sirneij/cryptoflow/internal/service"
	"github.com/Sirneij/cryptoflow/internal/session"
)

type userContextKey struct{}

// UserFromContext returns the authenticated user placed there by
// Authenticate.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*domain.User)
	return user, ok
}

// Authenticate resolves the session cookie to a live account and puts
// it on the request context. A missing, expired or dangling session
// fails with 401; a session store outage fails with 500 so clients do
// not treat an infrastructure problem as a logout.
func Authenticate(auth *service.AuthService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := security.GetCookie(r, security.SessionCookieName)
			user, err := auth.CurrentUser(r.Context(), token)
			if err != nil {
				if errors.Is(err, session.ErrUnauthenticated) {
					response.Error(w, r, http.StatusUnauthorized, "authentication required")
					return
				}
				logger.ErrorContext(r.Context(), "session resolution failed", "error", err)
				response.Error(w, r, http.StatusInternalServerError, "something went wrong")
				return
			}
			ctx := context.WithValue(r.Context(), userContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
