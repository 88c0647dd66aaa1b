package middleware

import (
	"context"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

type ctxKey string

const (
	ctxPrincipal ctxKey = "principal"
	ctxAdminUser ctxKey = "admin_user"
)

func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipal, p)
}

func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(ctxPrincipal).(domain.Principal)
	return p, ok && p.ID != ""
}

func WithAdminUser(ctx context.Context, u domain.AdminUser) context.Context {
	return context.WithValue(ctx, ctxAdminUser, u)
}

// AdminUserFromContext returns the identity attached by the admin guard.
func AdminUserFromContext(ctx context.Context) (domain.AdminUser, bool) {
	u, ok := ctx.Value(ctxAdminUser).(domain.AdminUser)
	return u, ok && u.ID != ""
}
