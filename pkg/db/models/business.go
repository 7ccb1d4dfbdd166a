package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitrinehub/vitrine-backend/pkg/enums"
	"github.com/vitrinehub/vitrine-backend/pkg/types"
)

// Business is the single tenant-scoped site profile. One row per tenant,
// enforced by the unique index on tenant_id.
type Business struct {
	ID       uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID uuid.UUID            `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:businesses_tenant_id_key"`
	Status   enums.BusinessStatus `gorm:"column:status;type:business_status;not null;default:'draft'"`

	Name                string  `gorm:"column:name;not null"`
	Description         *string `gorm:"column:description"`
	PhoneCommercial     *string `gorm:"column:phone_commercial"`
	MobileCommercial    *string `gorm:"column:mobile_commercial"`
	EmailCommercial     *string `gorm:"column:email_commercial"`
	AddressStreet       *string `gorm:"column:address_street"`
	AddressNumber       *string `gorm:"column:address_number"`
	AddressComplement   *string `gorm:"column:address_complement"`
	AddressNeighborhood *string `gorm:"column:address_neighborhood"`
	AddressCity         *string `gorm:"column:address_city"`
	AddressState        *string `gorm:"column:address_state"`
	AddressZip          *string `gorm:"column:address_zip"`
	MapURL              *string `gorm:"column:map_url"`
	LogoPath            *string `gorm:"column:logo_path"`
	PublicSlug          *string `gorm:"column:public_slug;uniqueIndex:businesses_public_slug_key"`

	SocialLinks types.SocialLinks `gorm:"column:social_links;type:jsonb"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
