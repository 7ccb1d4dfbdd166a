package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
)

// Repository exposes product persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a products repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// FindByID loads a product scoped to its business.
func (r *Repository) FindByID(ctx context.Context, businessID, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		First(&product, "id = ? AND business_id = ?", productID, businessID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDWithTx loads a product for update inside the provided transaction.
func (r *Repository) FindByIDWithTx(tx *gorm.DB, businessID, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ? AND business_id = ?", productID, businessID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// LockBusinessWithTx takes the parent business row lock so concurrent
// publishes across different products of one business serialize before the
// quota count.
func (r *Repository) LockBusinessWithTx(tx *gorm.DB, businessID uuid.UUID) error {
	var id uuid.UUID
	return tx.Model(&models.Business{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", businessID).
		Select("id").
		Scan(&id).Error
}

// ListByBusiness returns every product for the business ordered by position,
// creation time breaking ties.
func (r *Repository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.Product, error) {
	var items []models.Product
	if err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("position ASC, created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListPublishedByBusiness returns published products in display order.
func (r *Repository) ListPublishedByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.Product, error) {
	var items []models.Product
	if err := r.db.WithContext(ctx).
		Where("business_id = ? AND status = ?", businessID, enums.ProductStatusPublished).
		Order("position ASC, created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CountPublishedWithTx counts published products inside the transaction so
// the publish quota holds under concurrency.
func (r *Repository) CountPublishedWithTx(tx *gorm.DB, businessID uuid.UUID) (int64, error) {
	var count int64
	if err := tx.Model(&models.Product{}).
		Where("business_id = ? AND status = ?", businessID, enums.ProductStatusPublished).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextPosition returns the next free display position for the business.
func (r *Repository) NextPosition(ctx context.Context, businessID uuid.UUID) (int, error) {
	var max *int
	if err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("business_id = ?", businessID).
		Select("MAX(position)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}

// UpdateWithTx persists the product inside the provided transaction.
func (r *Repository) UpdateWithTx(tx *gorm.DB, product *models.Product) error {
	return tx.Save(product).Error
}

// UpdateStatus writes the lifecycle status only.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ProductStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}
