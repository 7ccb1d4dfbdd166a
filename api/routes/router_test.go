package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vitrinehub/vitrine-backend/internal/accounts"
	"github.com/vitrinehub/vitrine-backend/internal/business"
	"github.com/vitrinehub/vitrine-backend/internal/identity"
	"github.com/vitrinehub/vitrine-backend/internal/products"
	"github.com/vitrinehub/vitrine-backend/internal/public"
	pkgauth "github.com/vitrinehub/vitrine-backend/pkg/auth"
	"github.com/vitrinehub/vitrine-backend/pkg/config"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	"github.com/vitrinehub/vitrine-backend/pkg/logger"
	"github.com/vitrinehub/vitrine-backend/pkg/pagination"
)

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

type stubIdentityService struct{}

func (stubIdentityService) SignUp(context.Context, identity.SignUpInput) (*identity.UserDTO, error) {
	return &identity.UserDTO{ID: uuid.New()}, nil
}

func (stubIdentityService) VerifyEmail(context.Context, string) (*identity.UserDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid or expired verification token")
}

func (stubIdentityService) SignIn(context.Context, identity.SignInInput) (*identity.SessionDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
}

func (stubIdentityService) Refresh(context.Context, string, string) (*identity.SessionDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session")
}

func (stubIdentityService) SignOut(context.Context, string) error { return nil }

func (stubIdentityService) ResendConfirmation(context.Context, identity.ResendConfirmationInput) error {
	return nil
}

type stubAccountsService struct {
	account *accounts.AccountDTO
}

func (s stubAccountsService) Provision(context.Context, uuid.UUID, string, string) (*accounts.AccountDTO, error) {
	panic("unimplemented")
}

func (s stubAccountsService) GetByID(context.Context, uuid.UUID) (*accounts.AccountDTO, error) {
	if s.account == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	return s.account, nil
}

func (s stubAccountsService) GetByUserID(context.Context, uuid.UUID) (*accounts.AccountDTO, error) {
	if s.account == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	return s.account, nil
}

func (s stubAccountsService) GetByTenantID(context.Context, uuid.UUID) (*accounts.AccountDTO, error) {
	if s.account == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	return s.account, nil
}

func (s stubAccountsService) ChangeStatus(context.Context, accounts.ChangeStatusInput) (*accounts.AccountDTO, error) {
	panic("unimplemented")
}

func (s stubAccountsService) ListStatusEvents(context.Context, uuid.UUID, pagination.Params) (*accounts.StatusEventListDTO, error) {
	return &accounts.StatusEventListDTO{Events: []accounts.StatusEventDTO{}}, nil
}

type stubBusinessService struct {
	business *business.BusinessDTO
}

func (s stubBusinessService) Create(context.Context, uuid.UUID, business.CreateBusinessInput) (*business.BusinessDTO, error) {
	panic("unimplemented")
}

func (s stubBusinessService) GetByTenantID(context.Context, uuid.UUID) (*business.BusinessDTO, error) {
	if s.business == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
	}
	return s.business, nil
}

func (s stubBusinessService) Update(context.Context, uuid.UUID, business.UpdateBusinessInput) (*business.BusinessDTO, error) {
	panic("unimplemented")
}

func (s stubBusinessService) Publish(context.Context, uuid.UUID) (*business.BusinessDTO, error) {
	panic("unimplemented")
}

type stubProductsService struct{}

func (stubProductsService) CreateDraft(context.Context, uuid.UUID, products.CreateProductInput) (*products.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductsService) Update(context.Context, uuid.UUID, uuid.UUID, products.UpdateProductInput) (*products.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductsService) Publish(context.Context, uuid.UUID, uuid.UUID) (*products.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductsService) Archive(context.Context, uuid.UUID, uuid.UUID) (*products.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductsService) List(context.Context, uuid.UUID) ([]products.ProductDTO, error) {
	return []products.ProductDTO{}, nil
}

type stubPublicService struct {
	site *public.SiteDTO
}

func (s stubPublicService) ResolveSite(_ context.Context, slug string) (*public.SiteDTO, error) {
	if s.site != nil && s.site.Slug == slug {
		return s.site, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "site not found")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "vitrine",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
		Gate: config.GateConfig{
			AppRoot:        "/app",
			SignInPath:     "/sign-in",
			OnboardingPath: "/app/onboarding/business",
			HomePath:       "/app/home",
			PendingPath:    "/verify-email/pending",
		},
		Admin: config.AdminConfig{APIToken: "ops-token"},
	}
}

type routerFixture struct {
	cfg      *config.Config
	accounts stubAccountsService
	business stubBusinessService
	public   stubPublicService
}

func newTestRouter(f routerFixture) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(RouterParams{
		Config:   f.cfg,
		Logger:   logg,
		Sessions: stubSessionChecker{},
		Identity: stubIdentityService{},
		Accounts: f.accounts,
		Business: f.business,
		Products: stubProductsService{},
		Public:   f.public,
	})
}

func mintToken(t *testing.T, cfg *config.Config, payload pkgauth.AccessTokenPayload) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func activeAccountPayload(account *accounts.AccountDTO) pkgauth.AccessTokenPayload {
	return pkgauth.AccessTokenPayload{
		UserID:        account.UserID,
		AccountID:     &account.ID,
		TenantID:      &account.TenantID,
		AccountStatus: &account.Status,
		EmailVerified: true,
		JTI:           uuid.NewString(),
	}
}

func activeAccount() *accounts.AccountDTO {
	return &accounts.AccountDTO{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		TenantID: uuid.New(),
		Email:    "maria@example.com",
		Name:     "Maria",
		Status:   enums.AccountStatusActive,
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(routerFixture{cfg: testConfig()})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/business/me", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	account := activeAccount()
	slug := "oficina-joao"
	router := newTestRouter(routerFixture{
		cfg:      cfg,
		accounts: stubAccountsService{account: account},
		business: stubBusinessService{business: &business.BusinessDTO{
			ID:         uuid.New(),
			TenantID:   account.TenantID,
			Status:     enums.BusinessStatusPublished,
			Name:       "Oficina do João",
			PublicSlug: &slug,
		}},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/business/me", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, activeAccountPayload(account)))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestPrivateGroupRejectsUnprovisionedAccount(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(routerFixture{cfg: cfg})

	payload := pkgauth.AccessTokenPayload{UserID: uuid.New(), EmailVerified: true, JTI: uuid.NewString()}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/business/me", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, payload))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for tenant-less claims, got %d", resp.Code)
	}
}

func TestAdminGroupRequiresToken(t *testing.T) {
	router := newTestRouter(routerFixture{cfg: testConfig()})
	accountID := uuid.NewString()

	anonymous := httptest.NewRequest(http.MethodGet, "/api/admin/v1/accounts/"+accountID, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, anonymous)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without admin token, got %d", resp.Code)
	}

	wrong := httptest.NewRequest(http.MethodGet, "/api/admin/v1/accounts/"+accountID, nil)
	wrong.Header.Set("Authorization", "Bearer not-the-token")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, wrong)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong admin token, got %d", resp.Code)
	}
}

func TestAdminGroupAcceptsConfiguredToken(t *testing.T) {
	account := activeAccount()
	router := newTestRouter(routerFixture{cfg: testConfig(), accounts: stubAccountsService{account: account}})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/accounts/"+account.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer ops-token")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with admin token, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestPublicSiteResolvesPublishedSlug(t *testing.T) {
	router := newTestRouter(routerFixture{
		cfg:    testConfig(),
		public: stubPublicService{site: &public.SiteDTO{Slug: "oficina-joao", Name: "Oficina do João"}},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/public/business/oficina-joao", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "oficina-joao") {
		t.Fatalf("expected slug in body, got %s", resp.Body.String())
	}

	missing := httptest.NewRequest(http.MethodGet, "/api/public/business/nao-existe", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, missing)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown slug, got %d", resp.Code)
	}
}

func TestGateRedirectsAnonymousPageRequest(t *testing.T) {
	router := newTestRouter(routerFixture{cfg: testConfig()})

	req := httptest.NewRequest(http.MethodGet, "/app/home", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.Code)
	}
	if loc := resp.Header().Get("Location"); loc != "/sign-in?next=%2Fapp%2Fhome" {
		t.Fatalf("unexpected redirect %q", loc)
	}
}

func TestGateRedirectsUnverifiedToPending(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(routerFixture{cfg: cfg})

	payload := pkgauth.AccessTokenPayload{UserID: uuid.New(), EmailVerified: false, JTI: uuid.NewString()}
	req := httptest.NewRequest(http.MethodGet, "/app", nil)
	req.AddCookie(&http.Cookie{Name: pkgauth.AccessTokenCookie, Value: mintToken(t, cfg, payload)})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.Code)
	}
	if loc := resp.Header().Get("Location"); loc != "/verify-email/pending" {
		t.Fatalf("unexpected redirect %q", loc)
	}
}

func TestGateRedirectsBusinesslessToOnboarding(t *testing.T) {
	cfg := testConfig()
	account := activeAccount()
	router := newTestRouter(routerFixture{cfg: cfg, accounts: stubAccountsService{account: account}})

	req := httptest.NewRequest(http.MethodGet, "/app/home", nil)
	req.AddCookie(&http.Cookie{Name: pkgauth.AccessTokenCookie, Value: mintToken(t, cfg, activeAccountPayload(account))})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.Code)
	}
	if loc := resp.Header().Get("Location"); loc != "/app/onboarding/business" {
		t.Fatalf("unexpected redirect %q", loc)
	}
}

func TestGateServesShellForOnboardedAccount(t *testing.T) {
	cfg := testConfig()
	account := activeAccount()
	router := newTestRouter(routerFixture{
		cfg:      cfg,
		accounts: stubAccountsService{account: account},
		business: stubBusinessService{business: &business.BusinessDTO{ID: uuid.New(), TenantID: account.TenantID, Name: "Oficina"}},
	})

	req := httptest.NewRequest(http.MethodGet, "/app/home", nil)
	req.AddCookie(&http.Cookie{Name: pkgauth.AccessTokenCookie, Value: mintToken(t, cfg, activeAccountPayload(account))})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "<html") {
		t.Fatalf("expected app shell, got %s", resp.Body.String())
	}
}

func TestSignInPagePassesGate(t *testing.T) {
	router := newTestRouter(routerFixture{cfg: testConfig()})

	req := httptest.NewRequest(http.MethodGet, "/sign-in", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public page, got %d", resp.Code)
	}
}
