package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vitrinehub/vitrine-backend/api/middleware"
	"github.com/vitrinehub/vitrine-backend/internal/business"
	"github.com/vitrinehub/vitrine-backend/internal/products"
	pkgauth "github.com/vitrinehub/vitrine-backend/pkg/auth"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	"github.com/vitrinehub/vitrine-backend/pkg/logger"
)

type stubProductPublisher struct {
	published []uuid.UUID
	err       error
}

func (s *stubProductPublisher) CreateDraft(context.Context, uuid.UUID, products.CreateProductInput) (*products.ProductDTO, error) {
	panic("unimplemented")
}

func (s *stubProductPublisher) Update(context.Context, uuid.UUID, uuid.UUID, products.UpdateProductInput) (*products.ProductDTO, error) {
	panic("unimplemented")
}

func (s *stubProductPublisher) Publish(_ context.Context, _ uuid.UUID, productID uuid.UUID) (*products.ProductDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.published = append(s.published, productID)
	return &products.ProductDTO{ID: productID, Status: enums.ProductStatusPublished}, nil
}

func (s *stubProductPublisher) Archive(context.Context, uuid.UUID, uuid.UUID) (*products.ProductDTO, error) {
	panic("unimplemented")
}

func (s *stubProductPublisher) List(context.Context, uuid.UUID) ([]products.ProductDTO, error) {
	panic("unimplemented")
}

type stubBusinessLookup struct {
	business *business.BusinessDTO
}

func (s stubBusinessLookup) Create(context.Context, uuid.UUID, business.CreateBusinessInput) (*business.BusinessDTO, error) {
	panic("unimplemented")
}

func (s stubBusinessLookup) GetByTenantID(context.Context, uuid.UUID) (*business.BusinessDTO, error) {
	if s.business == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
	}
	return s.business, nil
}

func (s stubBusinessLookup) Update(context.Context, uuid.UUID, business.UpdateBusinessInput) (*business.BusinessDTO, error) {
	panic("unimplemented")
}

func (s stubBusinessLookup) Publish(context.Context, uuid.UUID) (*business.BusinessDTO, error) {
	panic("unimplemented")
}

func tenantContext(tenantID uuid.UUID) context.Context {
	status := enums.AccountStatusActive
	claims := &pkgauth.AccessTokenClaims{
		UserID:        uuid.New(),
		TenantID:      &tenantID,
		AccountStatus: &status,
		EmailVerified: true,
	}
	return middleware.WithClaims(context.Background(), claims)
}

func TestProductPublish(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	tenantID := uuid.New()
	businessID := uuid.New()
	productID := uuid.New()
	biz := &business.BusinessDTO{ID: businessID, TenantID: tenantID, Name: "Oficina"}

	makeRequest := func(ctx context.Context, svc products.Service, rawProductID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products/"+rawProductID+"/publish", nil)
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("productId", rawProductID)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		ProductPublish(svc, stubBusinessLookup{business: biz}, logg).ServeHTTP(rec, req)
		return rec
	}

	t.Run("missing tenant", func(t *testing.T) {
		rec := makeRequest(context.Background(), &stubProductPublisher{}, productID.String())
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403 without tenant claims, got %d", rec.Code)
		}
	})

	t.Run("invalid product id", func(t *testing.T) {
		rec := makeRequest(tenantContext(tenantID), &stubProductPublisher{}, "not-a-uuid")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
		}
	})

	t.Run("quota exhausted", func(t *testing.T) {
		svc := &stubProductPublisher{err: pkgerrors.New(pkgerrors.CodeStateConflict, "published product limit reached")}
		rec := makeRequest(tenantContext(tenantID), svc, productID.String())
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422 when limit reached, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		svc := &stubProductPublisher{}
		rec := makeRequest(tenantContext(tenantID), svc, productID.String())
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(svc.published) != 1 || svc.published[0] != productID {
			t.Fatalf("expected publish call for %s, got %v", productID, svc.published)
		}
	})
}

func TestProductPublishWithoutBusiness(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/"+uuid.NewString()+"/publish", nil)
	req = req.WithContext(tenantContext(uuid.New()))
	rec := httptest.NewRecorder()
	ProductPublish(&stubProductPublisher{}, stubBusinessLookup{}, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when tenant has no business, got %d", rec.Code)
	}
}
