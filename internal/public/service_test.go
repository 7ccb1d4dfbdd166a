package public

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
)

type stubSiteRepo struct {
	bySlug map[string]*models.Business
	err    error
}

func (s *stubSiteRepo) FindPublishedBySlug(_ context.Context, slug string) (*models.Business, error) {
	if s.err != nil {
		return nil, s.err
	}
	if biz, ok := s.bySlug[slug]; ok {
		return biz, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubCatalogRepo struct {
	byBusiness map[uuid.UUID][]models.Product
	err        error
}

func (s *stubCatalogRepo) ListPublishedByBusiness(_ context.Context, businessID uuid.UUID) ([]models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byBusiness[businessID], nil
}

func strPtr(v string) *string { return &v }

func publishedBusiness(slug string) *models.Business {
	return &models.Business{
		ID:          uuid.New(),
		TenantID:    uuid.New(),
		Status:      enums.BusinessStatusPublished,
		Name:        "Oficina do João",
		Description: strPtr("Mecânica de confiança"),
		AddressCity: strPtr("São Paulo"),
		PublicSlug:  &slug,
	}
}

func TestResolveSiteReturnsPublishedCatalog(t *testing.T) {
	biz := publishedBusiness("oficina-joao")
	price := int64(15000)
	sites := &stubSiteRepo{bySlug: map[string]*models.Business{"oficina-joao": biz}}
	catalog := &stubCatalogRepo{byBusiness: map[uuid.UUID][]models.Product{
		biz.ID: {
			{ID: uuid.New(), BusinessID: biz.ID, Status: enums.ProductStatusPublished, Type: enums.ProductTypeService, Title: "Troca de óleo", PriceCents: &price, Currency: strPtr("BRL"), Position: 0},
			{ID: uuid.New(), BusinessID: biz.ID, Status: enums.ProductStatusPublished, Type: enums.ProductTypeService, Title: "Alinhamento", Position: 1},
		},
	}}

	svc, err := NewService(sites, catalog)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	site, err := svc.ResolveSite(context.Background(), "Oficina-Joao ")
	if err != nil {
		t.Fatalf("ResolveSite: %v", err)
	}
	if site.Slug != "oficina-joao" || site.Name != "Oficina do João" {
		t.Fatalf("unexpected site %+v", site)
	}
	if len(site.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(site.Products))
	}
	if site.Products[0].Title != "Troca de óleo" || site.Products[0].PriceCents == nil || *site.Products[0].PriceCents != 15000 {
		t.Fatalf("unexpected first product %+v", site.Products[0])
	}
	if site.Products[1].Position != 1 {
		t.Fatalf("expected order preserved, got %+v", site.Products[1])
	}
}

func TestResolveSiteUnknownSlugIsNotFound(t *testing.T) {
	svc, err := NewService(&stubSiteRepo{bySlug: map[string]*models.Business{}}, &stubCatalogRepo{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.ResolveSite(context.Background(), "nao-existe")
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestResolveSiteMalformedSlugIsNotFound(t *testing.T) {
	svc, err := NewService(&stubSiteRepo{bySlug: map[string]*models.Business{}}, &stubCatalogRepo{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	for _, slug := range []string{"", "ab", "UPPER CASE!", "-leading", "app"} {
		_, err := svc.ResolveSite(context.Background(), slug)
		if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
			t.Errorf("slug %q: expected NOT_FOUND, got %v", slug, err)
		}
	}
}

func TestResolveSiteEmptyCatalog(t *testing.T) {
	biz := publishedBusiness("barbearia-zen")
	svc, err := NewService(
		&stubSiteRepo{bySlug: map[string]*models.Business{"barbearia-zen": biz}},
		&stubCatalogRepo{byBusiness: map[uuid.UUID][]models.Product{}},
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	site, err := svc.ResolveSite(context.Background(), "barbearia-zen")
	if err != nil {
		t.Fatalf("ResolveSite: %v", err)
	}
	if site.Products == nil || len(site.Products) != 0 {
		t.Fatalf("expected empty non-nil catalog, got %+v", site.Products)
	}
}
