package public

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitrinehub/vitrine-backend/internal/business"
	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
)

type siteRepository interface {
	FindPublishedBySlug(ctx context.Context, slug string) (*models.Business, error)
}

type catalogRepository interface {
	ListPublishedByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.Product, error)
}

// Service resolves anonymous storefront reads.
type Service interface {
	ResolveSite(ctx context.Context, slug string) (*SiteDTO, error)
}

type service struct {
	sites   siteRepository
	catalog catalogRepository
}

// NewService builds the public resolution service.
func NewService(sites siteRepository, catalog catalogRepository) (Service, error) {
	if sites == nil {
		return nil, fmt.Errorf("site repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{sites: sites, catalog: catalog}, nil
}

// ResolveSite loads a published business by slug together with its published
// catalog. Unpublished businesses, draft products, and malformed slugs are
// all indistinguishable from absence.
func (s *service) ResolveSite(ctx context.Context, slug string) (*SiteDTO, error) {
	slug = business.NormalizeSlug(slug)
	if err := business.ValidateSlug(slug); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "site not found")
	}

	biz, err := s.sites.FindPublishedBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "site not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve site")
	}

	items, err := s.catalog.ListPublishedByBusiness(ctx, biz.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog")
	}
	return siteFromModels(biz, items), nil
}
