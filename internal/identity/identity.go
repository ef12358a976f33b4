// Package identity carries the acting user through a request context.
package identity

import (
	"context"

	"github.com/hray3182/daybook/internal/apperr"
)

type ctxKey struct{}

// ErrNoUser is returned when a request context carries no user id.
var ErrNoUser = apperr.Unauthenticated("no user in context")

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

func UserID(ctx context.Context) (int64, error) {
	id, ok := ctx.Value(ctxKey{}).(int64)
	if !ok || id == 0 {
		return 0, ErrNoUser
	}
	return id, nil
}
