package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/vitrinehub/vitrine-backend/pkg/config"
	"github.com/vitrinehub/vitrine-backend/pkg/logger"
	"github.com/vitrinehub/vitrine-backend/pkg/metrics"
	"github.com/vitrinehub/vitrine-backend/pkg/security"
)

const resendScope = "resend"

// Dimension names which ceiling denied a request.
type Dimension string

const (
	DimensionIP    Dimension = "ip"
	DimensionEmail Dimension = "email"
)

// Result is the limiter verdict for one request.
type Result struct {
	Allowed  bool
	Denied   Dimension
	FailOpen bool
}

type counterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type keyBuilder interface {
	RateLimitKey(parts ...string) string
}

// Limiter applies the fixed-window resend ceilings per client address and
// per target email. Counter failures never block the caller.
type Limiter struct {
	store   counterStore
	keys    keyBuilder
	logg    *logger.Logger
	metrics *metrics.GateMetrics

	window     time.Duration
	ipLimit    int64
	emailLimit int64
}

// NewLimiter builds a limiter from configuration. The metrics handle may be nil.
func NewLimiter(store counterStore, keys keyBuilder, cfg config.ResendRateLimitConfig, logg *logger.Logger, gateMetrics *metrics.GateMetrics) (*Limiter, error) {
	if store == nil {
		return nil, fmt.Errorf("counter store required")
	}
	if keys == nil {
		return nil, fmt.Errorf("key builder required")
	}
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("window must be positive")
	}
	if cfg.IPLimit <= 0 || cfg.EmailLimit <= 0 {
		return nil, fmt.Errorf("limits must be positive")
	}
	return &Limiter{
		store:      store,
		keys:       keys,
		logg:       logg,
		metrics:    gateMetrics,
		window:     cfg.Window,
		ipLimit:    int64(cfg.IPLimit),
		emailLimit: int64(cfg.EmailLimit),
	}, nil
}

// CheckAndIncrement applies both ceilings in order. The client address is
// checked first; an address denial short-circuits before the email counter
// is touched, so a blocked address cannot burn a victim's email budget.
func (l *Limiter) CheckAndIncrement(ctx context.Context, ip, email string) Result {
	ipKey := l.keys.RateLimitKey(resendScope, string(DimensionIP), security.SHA256Hex(ip))
	count, err := l.store.IncrWithTTL(ctx, ipKey, l.window)
	if err != nil {
		return l.failOpen(ctx, DimensionIP, err)
	}
	if count > l.ipLimit {
		l.deny(DimensionIP)
		return Result{Denied: DimensionIP}
	}

	emailKey := l.keys.RateLimitKey(resendScope, string(DimensionEmail), security.SHA256Hex(email))
	count, err = l.store.IncrWithTTL(ctx, emailKey, l.window)
	if err != nil {
		return l.failOpen(ctx, DimensionEmail, err)
	}
	if count > l.emailLimit {
		l.deny(DimensionEmail)
		return Result{Denied: DimensionEmail}
	}

	l.metrics.IncVerdict(resendScope, "allowed")
	return Result{Allowed: true}
}

func (l *Limiter) failOpen(ctx context.Context, dim Dimension, err error) Result {
	if l.logg != nil {
		l.logg.Warn(ctx, fmt.Sprintf("rate limit store unavailable, allowing request (dimension=%s): %v", dim, err))
	}
	l.metrics.IncVerdict(resendScope, "failopen")
	return Result{Allowed: true, FailOpen: true}
}

func (l *Limiter) deny(dim Dimension) {
	l.metrics.IncVerdict(resendScope, "limited_"+string(dim))
}
