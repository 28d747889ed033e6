package clients

import "context"

// Principal is the authenticated caller of a request. It travels in the
// request context; services never look credentials up on their own.
type Principal struct {
	ClientID uint
	Email    string
	IsStaff  bool
}

// CanActFor reports whether p may see data owned by clientID.
func (p Principal) CanActFor(clientID uint) bool {
	return p.IsStaff || (p.ClientID != 0 && p.ClientID == clientID)
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
