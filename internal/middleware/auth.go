package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/avolkov/task-tracker/internal/auth"
	"github.com/avolkov/task-tracker/internal/models"
)

// Authenticator resolves an Authorization header value into a user identity.
type Authenticator interface {
	CurrentUser(ctx context.Context, authHeader string) (*models.User, error)
}

// RequireAuth validates the bearer token and injects the resolved user into
// the request context. The three 401 variants carry distinguishing details,
// matching the API contract.
func RequireAuth(svc Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := svc.CurrentUser(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrNotAuthenticated):
					writeDetail(w, http.StatusUnauthorized, "Not authenticated")
				case errors.Is(err, auth.ErrInvalidToken):
					writeDetail(w, http.StatusUnauthorized, "Invalid token")
				case errors.Is(err, auth.ErrUserNotFound):
					writeDetail(w, http.StatusUnauthorized, "User not found")
				default:
					writeDetail(w, http.StatusServiceUnavailable, "Service unavailable")
				}
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"detail":"` + detail + `"}`))
}
