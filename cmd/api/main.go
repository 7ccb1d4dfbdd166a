package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/vitrinehub/vitrine-backend/api/controllers"
	"github.com/vitrinehub/vitrine-backend/api/routes"
	"github.com/vitrinehub/vitrine-backend/internal/accounts"
	"github.com/vitrinehub/vitrine-backend/internal/business"
	"github.com/vitrinehub/vitrine-backend/internal/identity"
	"github.com/vitrinehub/vitrine-backend/internal/products"
	"github.com/vitrinehub/vitrine-backend/internal/public"
	"github.com/vitrinehub/vitrine-backend/internal/ratelimit"
	"github.com/vitrinehub/vitrine-backend/pkg/auth/session"
	"github.com/vitrinehub/vitrine-backend/pkg/config"
	"github.com/vitrinehub/vitrine-backend/pkg/db"
	"github.com/vitrinehub/vitrine-backend/pkg/instance"
	"github.com/vitrinehub/vitrine-backend/pkg/logger"
	"github.com/vitrinehub/vitrine-backend/pkg/mailer"
	"github.com/vitrinehub/vitrine-backend/pkg/metrics"
	"github.com/vitrinehub/vitrine-backend/pkg/migrate"
	"github.com/vitrinehub/vitrine-backend/pkg/redis"
	"github.com/vitrinehub/vitrine-backend/pkg/turnstile"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	gateMetrics := metrics.NewGateMetrics(registry)

	accountsService, err := accounts.NewService(accounts.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create accounts service", err)
		os.Exit(1)
	}

	businessRepo := business.NewRepository(dbClient.DB())
	businessService, err := business.NewService(businessRepo, accountsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create business service", err)
		os.Exit(1)
	}

	productsRepo := products.NewRepository(dbClient.DB())
	productsService, err := products.NewService(productsRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	publicService, err := public.NewService(businessRepo, productsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create public service", err)
		os.Exit(1)
	}

	captcha, err := turnstile.NewClient(cfg.Turnstile)
	if err != nil {
		logg.Error(context.Background(), "failed to create turnstile client", err)
		os.Exit(1)
	}

	mailClient, err := mailer.NewClient(cfg.Mailer)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer client", err)
		os.Exit(1)
	}

	resendLimiter, err := ratelimit.NewLimiter(redisClient, redisClient, cfg.ResendLimit, logg, gateMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create resend limiter", err)
		os.Exit(1)
	}

	identityService, err := identity.NewService(identity.Deps{
		Repo:         identity.NewRepository(dbClient.DB()),
		Accounts:     accountsService,
		Tokens:       redisClient,
		Sessions:     sessionManager,
		Captcha:      captcha,
		Mail:         mailClient,
		Limiter:      resendLimiter,
		Logger:       logg,
		JWT:          cfg.JWT,
		Password:     cfg.Password,
		Verification: cfg.Verification,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create identity service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.RouterParams{
		Config:      cfg,
		Logger:      logg,
		Sessions:    sessionManager,
		Identity:    identityService,
		Accounts:    accountsService,
		Business:    businessService,
		Products:    productsService,
		Public:      publicService,
		GateMetrics: gateMetrics,
		Registry:    registry,
		Pingers: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
		},
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	if err := multierr.Combine(redisClient.Close(), dbClient.Close()); err != nil {
		logg.Error(ctx, "error closing dependencies", err)
		os.Exit(1)
	}
}
