package middleware

import (
	"net/http"

	"github.com/vitrinehub/vitrine-backend/api/responses"
	pkgauth "github.com/vitrinehub/vitrine-backend/pkg/auth"
	"github.com/vitrinehub/vitrine-backend/pkg/auth/session"
	"github.com/vitrinehub/vitrine-backend/pkg/config"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	"github.com/vitrinehub/vitrine-backend/pkg/logger"
)

// Auth validates the access token (bearer header or cookie) and seeds the
// request context with its claims.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := pkgauth.ReadAccessToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			ctx := WithClaims(r.Context(), claims)
			if logg != nil {
				fields := map[string]any{"user_id": claims.UserID.String()}
				if claims.TenantID != nil {
					fields["tenant_id"] = claims.TenantID.String()
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTenant rejects authenticated requests whose claims carry no
// provisioned account or a non-active account. The status lives in the token
// claims, so an admin suspension bites here at the next refresh: every
// refresh re-resolves the account, which bounds the staleness window by the
// access token TTL.
func RequireTenant(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil || claims.TenantID == nil || claims.AccountStatus == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "account not provisioned"))
				return
			}
			if *claims.AccountStatus != enums.AccountStatusActive {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "account is not active").
					WithDetails(map[string]any{"status": string(*claims.AccountStatus)}))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
