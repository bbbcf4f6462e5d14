package auth

import "context"

// Identity is the verified caller. The only producer is Verifier.Verify; it is
// attached to a single request's context and discarded with it.
type Identity struct {
	Subject string `json:"subject"`
	Email   string `json:"email"`
	Role    Role   `json:"role"`
}

// HasRole reports whether the identity carries exactly role.
func (i Identity) HasRole(role Role) bool {
	return i.Role == role
}

type contextKey struct{}

// WithIdentity returns a child of ctx carrying id. The identity is stored by
// value so handlers further down cannot change what earlier steps saw.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity attached by Authenticate.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// MustFromContext is FromContext for code that runs behind Authenticate. A
// missing identity means the middleware chain was assembled in the wrong order.
func MustFromContext(ctx context.Context) Identity {
	id, ok := FromContext(ctx)
	if !ok {
		panic(errNoIdentity)
	}
	return id
}
