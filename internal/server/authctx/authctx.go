package authctx

import (
	"context"

	"carcare-backend/internal/domain"
)

type contextKey string

const userContextKey contextKey = "currentUser"

type CurrentUser struct {
	ID        int64
	Email     string
	Role      domain.UserRole
	HourlyPay float64
}

// Staff reports whether the user may see back-office data such as prices.
func (u CurrentUser) Staff() bool {
	return u.Role == domain.RoleAccountant || u.Role == domain.RoleManager || u.Role == domain.RoleAdmin
}

func WithCurrentUser(ctx context.Context, user CurrentUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func FromContext(ctx context.Context) *CurrentUser {
	val, ok := ctx.Value(userContextKey).(CurrentUser)
	if !ok {
		return nil
	}
	return &val
}
