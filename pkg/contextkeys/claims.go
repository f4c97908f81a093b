package contextkeys

import (
	"context"

	"github.com/uth-confms/confms/pkg/auth"
)

// WithClaims stores the authenticated session claims on the context.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// ClaimsFrom returns the session claims from the context, or nil when
// the request is unauthenticated.
func ClaimsFrom(ctx context.Context) *auth.Claims {
	claims, ok := ctx.Value(ClaimsKey).(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}
