package common

import "context"

type ctxKey string

const adminKey ctxKey = "auth/admin"

// Admin identifies an authenticated back-office user.
type Admin struct {
	ID         int64
	Username   string
	Superadmin bool
}

// WithAdmin stores the authenticated admin on the provided context.
func WithAdmin(ctx context.Context, admin Admin) context.Context {
	return context.WithValue(ctx, adminKey, admin)
}

// AdminFrom extracts the authenticated admin from the context if present.
func AdminFrom(ctx context.Context) (Admin, bool) {
	v := ctx.Value(adminKey)
	if v == nil {
		return Admin{}, false
	}
	admin, ok := v.(Admin)
	return admin, ok
}
