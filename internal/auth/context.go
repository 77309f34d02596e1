package auth

import "context"

type contextKey struct{}

var identityKey contextKey

// WithIdentity returns a context carrying the verified caller email.
func WithIdentity(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, identityKey, email)
}

// Identity returns the verified caller email stored by the auth middleware.
func Identity(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(identityKey).(string)
	return email, ok && email != ""
}
