package authctx

import (
	"context"

	"github.com/catzoCode/catzoteam-project/internal/domain"
)

type contextKey string

const userContextKey contextKey = "currentUser"

type CurrentUser struct {
	ID     int64
	Email  string
	Role   domain.UserRole
	Branch string
}

// IsManager reports whether the user can make manager-level decisions.
func (u CurrentUser) IsManager() bool {
	return u.Role == domain.RoleManager || u.Role == domain.RoleAdmin
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
