package auth

import "context"

const RoleAdmin = "admin"

// Identity is the caller established from a verified bearer token.
type Identity struct {
	UserID string
	Role   string
}

// Admin reports whether the identity may call admin-only operations.
func (id Identity) Admin() bool {
	return id.Role == RoleAdmin
}

type identityKey struct{}

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext extracts the identity set by the auth middleware. The second
// return is false for unauthenticated requests.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
