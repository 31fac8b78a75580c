package utils

import (
	"context"

	"github.com/vaughan-dsouza/notes/internal/models"
)

// context key
type ctxKey string

const ctxUserKey ctxKey = "user"

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxUserKey, u)
}

// CurrentUser returns the user stored by the auth middleware, if any.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(ctxUserKey).(*models.User)
	return u, ok && u != nil
}
