package common

import "context"

type ctxKey string

const (
	userIDKey ctxKey = "session/user-id"
	roleKey   ctxKey = "session/role"
	emailKey  ctxKey = "session/email"
)

// WithIdentity stores the acting user id and marketplace role on the context.
func WithIdentity(ctx context.Context, id, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, id)
	return context.WithValue(ctx, roleKey, role)
}

// UserID extracts the acting user identifier from the context if present.
func UserID(ctx context.Context) (string, bool) {
	v := ctx.Value(userIDKey)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// WithEmail stores the acting user's email address on the context.
func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailKey, email)
}

// Email extracts the acting user's email address from the context if present.
func Email(ctx context.Context) (string, bool) {
	v := ctx.Value(emailKey)
	if v == nil {
		return "", false
	}
	email, ok := v.(string)
	return email, ok
}

// Role extracts the marketplace role ("farmer" or "buyer") from the context.
func Role(ctx context.Context) (string, bool) {
	v := ctx.Value(roleKey)
	if v == nil {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}
