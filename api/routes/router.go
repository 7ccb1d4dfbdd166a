package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vitrinehub/vitrine-backend/api/controllers"
	"github.com/vitrinehub/vitrine-backend/api/middleware"
	"github.com/vitrinehub/vitrine-backend/internal/accounts"
	"github.com/vitrinehub/vitrine-backend/internal/business"
	"github.com/vitrinehub/vitrine-backend/internal/identity"
	"github.com/vitrinehub/vitrine-backend/internal/products"
	"github.com/vitrinehub/vitrine-backend/internal/public"
	"github.com/vitrinehub/vitrine-backend/pkg/auth/session"
	"github.com/vitrinehub/vitrine-backend/pkg/config"
	"github.com/vitrinehub/vitrine-backend/pkg/logger"
	"github.com/vitrinehub/vitrine-backend/pkg/metrics"
)

// RouterParams collects everything the HTTP surface depends on.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	Sessions session.AccessSessionChecker

	Identity identity.Service
	Accounts accounts.Service
	Business business.Service
	Products products.Service
	Public   public.Service

	GateMetrics *metrics.GateMetrics
	Registry    *prometheus.Registry

	// readiness probes, keyed by dependency name
	Pingers map[string]controllers.Pinger
}

func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, p.Pingers))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/business/{slug}", controllers.PublicSite(p.Public, p.Logger))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/sign-up", controllers.AuthSignUp(p.Identity, p.Logger))
		r.Post("/sign-in", controllers.AuthSignIn(p.Identity, p.Config.JWT, p.Config.App, p.Logger))
		r.Get("/verify-email", controllers.AuthVerifyEmail(p.Identity, p.Logger))
		r.Post("/refresh", controllers.AuthRefresh(p.Identity, p.Config.JWT, p.Config.App, p.Logger))
		r.Post("/sign-out", controllers.AuthSignOut(p.Identity, p.Config.App, p.Logger))
		r.Post("/resend-confirmation", controllers.AuthResendConfirmation(p.Identity, p.Logger))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(p.Config.JWT, p.Sessions, p.Logger))
		r.Use(middleware.RequireTenant(p.Logger))

		r.Route("/business", func(r chi.Router) {
			r.Post("/", controllers.BusinessCreate(p.Business, p.Logger))
			r.Get("/me", controllers.BusinessGetMine(p.Business, p.Logger))
			r.Patch("/me", controllers.BusinessUpdate(p.Business, p.Logger))
			r.Post("/publish", controllers.BusinessPublish(p.Business, p.Logger))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(p.Products, p.Business, p.Logger))
			r.Post("/", controllers.ProductCreate(p.Products, p.Business, p.Logger))
			r.Patch("/{productId}", controllers.ProductUpdate(p.Products, p.Business, p.Logger))
			r.Post("/{productId}/publish", controllers.ProductPublish(p.Products, p.Business, p.Logger))
			r.Post("/{productId}/archive", controllers.ProductArchive(p.Products, p.Business, p.Logger))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(p.Config.Admin, p.Logger))

		r.Route("/accounts/{accountId}", func(r chi.Router) {
			r.Get("/", controllers.AdminAccountGet(p.Accounts, p.Logger))
			r.Post("/status", controllers.AdminAccountChangeStatus(p.Accounts, p.Logger))
			r.Get("/events", controllers.AdminAccountStatusEvents(p.Accounts, p.Logger))
		})
	})

	// every remaining path is a browser page and walks through the gate
	gate := middleware.Gate(middleware.GateParams{
		Config:    p.Config,
		Resolver:  middleware.NewGateResolver(p.Accounts, p.Business),
		Refresher: p.Identity,
		Metrics:   p.GateMetrics,
		Logger:    p.Logger,
	})
	r.With(gate).Get("/*", controllers.AppShell())

	return r
}
