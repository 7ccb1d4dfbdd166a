package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/vitrinehub/vitrine-backend/internal/accounts"
	"github.com/vitrinehub/vitrine-backend/internal/business"
	"github.com/vitrinehub/vitrine-backend/internal/gate"
	"github.com/vitrinehub/vitrine-backend/internal/identity"
	pkgauth "github.com/vitrinehub/vitrine-backend/pkg/auth"
	"github.com/vitrinehub/vitrine-backend/pkg/config"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	"github.com/vitrinehub/vitrine-backend/pkg/logger"
	"github.com/vitrinehub/vitrine-backend/pkg/metrics"
)

// GateResolver loads the account status and business presence backing a
// gate decision. A nil status means "no account provisioned yet".
type GateResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID, tenantID *uuid.UUID) (*enums.AccountStatus, bool, error)
}

// SessionRefresher renews an expired access token from its refresh token.
// The renewed pair rides back to the browser on the response cookies.
type SessionRefresher interface {
	Refresh(ctx context.Context, accessToken, refreshToken string) (*identity.SessionDTO, error)
}

// GateParams bundles the gate middleware dependencies.
type GateParams struct {
	Config    *config.Config
	Resolver  GateResolver
	Refresher SessionRefresher
	Metrics   *metrics.GateMetrics
	Logger    *logger.Logger
}

// Gate applies the navigation decision tree to browser page requests.
func Gate(p GateParams) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := gate.Request{Path: r.URL.Path, RequestURI: r.URL.RequestURI()}

			// excluded and public paths skip principal resolution entirely
			if d := gate.Decide(p.Config.Gate, gate.Input{Request: req}); d.Action == gate.ActionAllow {
				apply(p, w, r, next, d)
				return
			}

			claims := resolveClaims(p, w, r)

			input := gate.Input{Request: req}
			if claims != nil {
				input.Principal = &gate.Principal{
					UserID:        claims.UserID,
					EmailVerified: claims.EmailVerified,
					TenantID:      claims.TenantID,
				}

				status, hasBusiness, err := p.Resolver.Resolve(r.Context(), claims.UserID, claims.TenantID)
				if err != nil {
					if p.Logger != nil {
						p.Logger.Error(r.Context(), "gate resolution failed", err)
					}
					apply(p, w, r, next, gate.FailClosed(p.Config.Gate, req))
					return
				}
				input.AccountStatus = status
				input.HasBusiness = hasBusiness
			}

			apply(p, w, r, next, gate.Decide(p.Config.Gate, input))
		})
	}
}

// resolveClaims parses the session cookie, renewing an expired access token
// through the refresher when possible.
func resolveClaims(p GateParams, w http.ResponseWriter, r *http.Request) *pkgauth.AccessTokenClaims {
	token := pkgauth.ReadAccessToken(r)
	if token == "" {
		return nil
	}

	claims, err := pkgauth.ParseAccessToken(p.Config.JWT, token)
	if err == nil {
		return claims
	}

	if p.Refresher == nil {
		return nil
	}
	refresh := pkgauth.ReadRefreshToken(r)
	if refresh == "" {
		return nil
	}

	renewed, err := p.Refresher.Refresh(r.Context(), token, refresh)
	if err != nil {
		return nil
	}
	claims, err = pkgauth.ParseAccessToken(p.Config.JWT, renewed.AccessToken)
	if err != nil {
		return nil
	}

	pkgauth.SetSessionCookies(w, p.Config.JWT, renewed.AccessToken, renewed.RefreshToken, p.Config.App.IsProd())
	return claims
}

func apply(p GateParams, w http.ResponseWriter, r *http.Request, next http.Handler, d gate.Decision) {
	if p.Metrics != nil {
		p.Metrics.IncDecision(d.Action.String())
	}

	switch d.Action {
	case gate.ActionAllow:
		next.ServeHTTP(w, r)
	case gate.ActionRedirect:
		http.Redirect(w, r, d.Location, http.StatusFound)
	default:
		status := d.Status
		if status == 0 {
			status = http.StatusForbidden
		}
		http.Error(w, http.StatusText(status), status)
	}
}

// NewGateResolver adapts the account and business services to the resolver
// the gate middleware expects.
func NewGateResolver(accountsSvc accountGetter, businessSvc businessGetter) GateResolver {
	return &gateResolver{accounts: accountsSvc, business: businessSvc}
}

type accountGetter interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*accounts.AccountDTO, error)
}

type businessGetter interface {
	GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*business.BusinessDTO, error)
}

type gateResolver struct {
	accounts accountGetter
	business businessGetter
}

func (g *gateResolver) Resolve(ctx context.Context, userID uuid.UUID, tenantID *uuid.UUID) (*enums.AccountStatus, bool, error) {
	account, err := g.accounts.GetByUserID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	if tenantID == nil {
		return &account.Status, false, nil
	}
	if _, err := g.business.GetByTenantID(ctx, *tenantID); err != nil {
		if isNotFound(err) {
			return &account.Status, false, nil
		}
		return nil, false, err
	}
	return &account.Status, true, nil
}

func isNotFound(err error) bool {
	typed := pkgerrors.As(err)
	return typed != nil && typed.Code() == pkgerrors.CodeNotFound
}
