package middleware

import (
	"context"

	pkgauth "github.com/vitrinehub/vitrine-backend/pkg/auth"
)

type contextKey string

const ctxClaims contextKey = "access_claims"

// ClaimsFromContext returns the access claims seeded by the auth middleware,
// or nil for anonymous requests.
func ClaimsFromContext(ctx context.Context) *pkgauth.AccessTokenClaims {
	if ctx == nil {
		return nil
	}
	if claims, ok := ctx.Value(ctxClaims).(*pkgauth.AccessTokenClaims); ok {
		return claims
	}
	return nil
}

// WithClaims injects access claims into the context.
func WithClaims(ctx context.Context, claims *pkgauth.AccessTokenClaims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClaims, claims)
}
