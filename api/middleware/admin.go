package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/vitrinehub/vitrine-backend/api/responses"
	"github.com/vitrinehub/vitrine-backend/pkg/config"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	"github.com/vitrinehub/vitrine-backend/pkg/logger"
)

// RequireAdminToken guards the operations API with the static admin token.
// With no token configured every request is rejected.
func RequireAdminToken(cfg config.AdminConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.APIToken == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin api disabled"))
				return
			}

			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
				raw = strings.TrimSpace(raw[7:])
			}
			if raw == "" || subtle.ConstantTimeCompare([]byte(raw), []byte(cfg.APIToken)) != 1 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid admin credentials"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
