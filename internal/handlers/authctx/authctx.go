// Package authctx carries authenticated request data (decoded claims, resolved
// user) through the request context. Split from handlers so both handlers and
// middleware can use it.
package authctx

import (
	"context"

	"github.com/nvoronin/bookly/internal/models"
	"github.com/nvoronin/bookly/internal/service/auth/tokenmanager"
)

type ctxKey string

const (
	userKey   ctxKey = "user"
	claimsKey ctxKey = "claims"
)

func NewContextWithUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func UserFromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey).(models.User)
	return u, ok
}

func NewContextWithClaims(ctx context.Context, c tokenmanager.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func ClaimsFromContext(ctx context.Context) (tokenmanager.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(tokenmanager.Claims)
	return c, ok
}
