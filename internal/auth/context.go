package auth

import (
	"context"

	"github.com/avolkov/task-tracker/internal/models"
)

type ctxKey byte

const userKey = ctxKey(1)

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom extracts the user placed by the auth middleware.
func UserFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok
}
