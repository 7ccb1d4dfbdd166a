package business

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitrinehub/vitrine-backend/internal/accounts"
	"github.com/vitrinehub/vitrine-backend/pkg/db"
	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	"github.com/vitrinehub/vitrine-backend/pkg/types"
)

type businessRepository interface {
	Create(ctx context.Context, biz *models.Business) error
	FindByTenantID(ctx context.Context, tenantID uuid.UUID) (*models.Business, error)
	Update(ctx context.Context, biz *models.Business) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.BusinessStatus) error
}

type accountResolver interface {
	GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*accounts.AccountDTO, error)
}

// CreateBusinessInput carries the fields accepted at onboarding.
type CreateBusinessInput struct {
	Name        string
	Description *string
}

// UpdateBusinessInput captures the mutable business fields. Nil means
// "leave unchanged".
type UpdateBusinessInput struct {
	Name                *string
	Description         *string
	PhoneCommercial     *string
	MobileCommercial    *string
	EmailCommercial     *string
	AddressStreet       *string
	AddressNumber       *string
	AddressComplement   *string
	AddressNeighborhood *string
	AddressCity         *string
	AddressState        *string
	AddressZip          *string
	MapURL              *string
	LogoPath            *string
	PublicSlug          *string
	SocialLinks         *types.SocialLinks
}

// Service exposes business lifecycle operations.
type Service interface {
	Create(ctx context.Context, tenantID uuid.UUID, input CreateBusinessInput) (*BusinessDTO, error)
	GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*BusinessDTO, error)
	Update(ctx context.Context, tenantID uuid.UUID, input UpdateBusinessInput) (*BusinessDTO, error)
	Publish(ctx context.Context, tenantID uuid.UUID) (*BusinessDTO, error)
}

type service struct {
	repo     businessRepository
	accounts accountResolver
}

// NewService builds a business service with the provided dependencies.
func NewService(repo businessRepository, accountsSvc accountResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("business repository required")
	}
	if accountsSvc == nil {
		return nil, fmt.Errorf("account resolver required")
	}
	return &service{repo: repo, accounts: accountsSvc}, nil
}

// Create provisions the tenant's single business in draft status. The unique
// index on tenant_id turns a second create into a conflict.
func (s *service) Create(ctx context.Context, tenantID uuid.UUID, input CreateBusinessInput) (*BusinessDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business name is required")
	}

	account, err := s.accounts.GetByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if account.Status != enums.AccountStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account must be active to create a business").
			WithDetails(map[string]any{"status": string(account.Status)})
	}

	biz := &models.Business{
		TenantID:    tenantID,
		Status:      enums.BusinessStatusDraft,
		Name:        name,
		Description: input.Description,
	}
	if err := s.repo.Create(ctx, biz); err != nil {
		if db.IsUniqueViolation(err, "businesses_tenant_id_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "tenant already has a business")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create business")
	}
	return FromModel(biz), nil
}

func (s *service) GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*BusinessDTO, error) {
	biz, err := s.repo.FindByTenantID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load business")
	}
	return FromModel(biz), nil
}

// Update applies field edits scoped to the tenant's business. Slug edits are
// only accepted while the business is draft.
func (s *service) Update(ctx context.Context, tenantID uuid.UUID, input UpdateBusinessInput) (*BusinessDTO, error) {
	biz, err := s.repo.FindByTenantID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load business")
	}

	if input.PublicSlug != nil {
		if biz.Status == enums.BusinessStatusPublished {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "slug cannot change while published")
		}
		slug := NormalizeSlug(*input.PublicSlug)
		if err := ValidateSlug(slug); err != nil {
			return nil, err
		}
		biz.PublicSlug = &slug
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "business name cannot be empty")
		}
		biz.Name = name
	}
	if input.Description != nil {
		biz.Description = cloneStringPtr(input.Description)
	}
	if input.PhoneCommercial != nil {
		biz.PhoneCommercial = cloneStringPtr(input.PhoneCommercial)
	}
	if input.MobileCommercial != nil {
		biz.MobileCommercial = cloneStringPtr(input.MobileCommercial)
	}
	if input.EmailCommercial != nil {
		biz.EmailCommercial = cloneStringPtr(input.EmailCommercial)
	}
	if input.AddressStreet != nil {
		biz.AddressStreet = cloneStringPtr(input.AddressStreet)
	}
	if input.AddressNumber != nil {
		biz.AddressNumber = cloneStringPtr(input.AddressNumber)
	}
	if input.AddressComplement != nil {
		biz.AddressComplement = cloneStringPtr(input.AddressComplement)
	}
	if input.AddressNeighborhood != nil {
		biz.AddressNeighborhood = cloneStringPtr(input.AddressNeighborhood)
	}
	if input.AddressCity != nil {
		biz.AddressCity = cloneStringPtr(input.AddressCity)
	}
	if input.AddressState != nil {
		biz.AddressState = cloneStringPtr(input.AddressState)
	}
	if input.AddressZip != nil {
		biz.AddressZip = cloneStringPtr(input.AddressZip)
	}
	if input.MapURL != nil {
		biz.MapURL = cloneStringPtr(input.MapURL)
	}
	if input.LogoPath != nil {
		biz.LogoPath = cloneStringPtr(input.LogoPath)
	}
	if input.SocialLinks != nil {
		biz.SocialLinks = cloneSocialLinks(*input.SocialLinks)
	}

	if err := s.repo.Update(ctx, biz); err != nil {
		if db.IsUniqueViolation(err, "businesses_public_slug_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update business")
	}
	return FromModel(biz), nil
}

// Publish flips the business live once the full checklist passes. A failed
// checklist returns every missing field at once; publishing an already
// published business is a no-op success.
func (s *service) Publish(ctx context.Context, tenantID uuid.UUID) (*BusinessDTO, error) {
	biz, err := s.repo.FindByTenantID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load business")
	}

	if biz.Status == enums.BusinessStatusPublished {
		return FromModel(biz), nil
	}

	if missing := missingPublishFields(biz); len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business profile incomplete").
			WithDetails(map[string]any{"missing": missing})
	}

	if err := s.repo.UpdateStatus(ctx, biz.ID, enums.BusinessStatusPublished); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publish business")
	}
	biz.Status = enums.BusinessStatusPublished
	return FromModel(biz), nil
}

// missingPublishFields runs the full publish checklist and reports every
// absent field, not just the first.
func missingPublishFields(biz *models.Business) []string {
	var missing []string
	required := []struct {
		field string
		value *string
	}{
		{"public_slug", biz.PublicSlug},
		{"logo_path", biz.LogoPath},
		{"phone_commercial", biz.PhoneCommercial},
		{"mobile_commercial", biz.MobileCommercial},
		{"email_commercial", biz.EmailCommercial},
		{"map_url", biz.MapURL},
		{"address_street", biz.AddressStreet},
		{"address_number", biz.AddressNumber},
		{"address_neighborhood", biz.AddressNeighborhood},
		{"address_city", biz.AddressCity},
		{"address_state", biz.AddressState},
		{"address_zip", biz.AddressZip},
	}
	for _, req := range required {
		if req.value == nil || strings.TrimSpace(*req.value) == "" {
			missing = append(missing, req.field)
		}
	}
	if !biz.SocialLinks.HasAnyLink() {
		missing = append(missing, "social_links")
	}
	return missing
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}

func cloneSocialLinks(value types.SocialLinks) types.SocialLinks {
	if value == nil {
		return nil
	}
	res := make(types.SocialLinks, len(value))
	for k, v := range value {
		res[k] = v
	}
	return res
}
