package utils

import (
	"context"

	"github.com/vaughan-dsouza/cloudportal/internal/models"
)

// context key
type ctxKey string

const ctxClaimsKey ctxKey = "claims"

// RequestClaims is what the auth guard learned about the caller.
type RequestClaims struct {
	UserID int64
	Role   models.Role
}

func WithClaims(ctx context.Context, c RequestClaims) context.Context {
	return context.WithValue(ctx, ctxClaimsKey, c)
}

func ClaimsFromContext(ctx context.Context) (RequestClaims, bool) {
	c, ok := ctx.Value(ctxClaimsKey).(RequestClaims)
	return c, ok
}
