package business

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
)

// Repository exposes business persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a business repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the tenant's business row. The unique index on tenant_id
// caps it at one per tenant.
func (r *Repository) Create(ctx context.Context, biz *models.Business) error {
	return r.db.WithContext(ctx).Create(biz).Error
}

// FindByTenantID loads the tenant's business.
func (r *Repository) FindByTenantID(ctx context.Context, tenantID uuid.UUID) (*models.Business, error) {
	var biz models.Business
	if err := r.db.WithContext(ctx).First(&biz, "tenant_id = ?", tenantID).Error; err != nil {
		return nil, err
	}
	return &biz, nil
}

// FindPublishedBySlug loads a published business by its public slug. Draft
// rows are invisible here.
func (r *Repository) FindPublishedBySlug(ctx context.Context, slug string) (*models.Business, error) {
	var biz models.Business
	if err := r.db.WithContext(ctx).
		Where("public_slug = ? AND status = ?", slug, enums.BusinessStatusPublished).
		First(&biz).Error; err != nil {
		return nil, err
	}
	return &biz, nil
}

// Update persists the full business row.
func (r *Repository) Update(ctx context.Context, biz *models.Business) error {
	return r.db.WithContext(ctx).Save(biz).Error
}

// UpdateStatus writes the lifecycle status only.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.BusinessStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Business{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}
