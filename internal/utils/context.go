package utils

import "context"

type contextKey string

const (
	AccountIDKey    contextKey = "account_id"
	AccountEmailKey contextKey = "email"
	AccountRoleKey  contextKey = "role"
)

const RoleAdmin = "ADMIN"

// SetAccountContext sets the caller identity into context (called by middleware)
func SetAccountContext(ctx context.Context, id uint, email string, role string) context.Context {
	ctx = context.WithValue(ctx, AccountIDKey, id)
	ctx = context.WithValue(ctx, AccountEmailKey, email)
	ctx = context.WithValue(ctx, AccountRoleKey, role)
	return ctx
}

// GetAccountIDFromContext retrieves the account ID safely.
// ok == false means the caller is a guest.
func GetAccountIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(AccountIDKey).(uint)
	return id, ok
}

func GetAccountEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(AccountEmailKey).(string)
	return email
}

func GetAccountRoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(AccountRoleKey).(string)
	return role
}

func IsAdmin(ctx context.Context) bool {
	return GetAccountRoleFromContext(ctx) == RoleAdmin
}
