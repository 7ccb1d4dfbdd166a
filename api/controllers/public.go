package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vitrinehub/vitrine-backend/api/responses"
	"github.com/vitrinehub/vitrine-backend/internal/public"
	"github.com/vitrinehub/vitrine-backend/pkg/logger"
)

// PublicSite serves the anonymous storefront read for a published slug.
func PublicSite(svc public.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		site, err := svc.ResolveSite(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, site)
	}
}
