package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitrinehub/vitrine-backend/pkg/enums"
)

// Product belongs to a business. Draft rows are created with placeholder
// content; published_at marks the first publish and survives demotion back
// to draft.
type Product struct {
	ID         uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessID uuid.UUID           `gorm:"column:business_id;type:uuid;not null;index:products_business_id_idx"`
	Status     enums.ProductStatus `gorm:"column:status;type:product_status;not null;default:'draft'"`
	Type       enums.ProductType   `gorm:"column:type;type:product_type;not null;default:'service'"`

	Title            string  `gorm:"column:title;not null"`
	ShortDescription *string `gorm:"column:short_description"`
	Description      *string `gorm:"column:description"`
	PriceCents       *int64  `gorm:"column:price_cents"`
	Currency         *string `gorm:"column:currency"`
	CTALabel         *string `gorm:"column:cta_label"`
	ImageURL         *string `gorm:"column:image_url"`
	Position         int     `gorm:"column:position;not null;default:0"`

	PublishedAt *time.Time `gorm:"column:published_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
