package business

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
	"github.com/vitrinehub/vitrine-backend/pkg/types"
)

// BusinessDTO is the API-facing shape of a business profile.
type BusinessDTO struct {
	ID                  uuid.UUID            `json:"id"`
	TenantID            uuid.UUID            `json:"tenant_id"`
	Status              enums.BusinessStatus `json:"status"`
	Name                string               `json:"name"`
	Description         *string              `json:"description,omitempty"`
	PhoneCommercial     *string              `json:"phone_commercial,omitempty"`
	MobileCommercial    *string              `json:"mobile_commercial,omitempty"`
	EmailCommercial     *string              `json:"email_commercial,omitempty"`
	AddressStreet       *string              `json:"address_street,omitempty"`
	AddressNumber       *string              `json:"address_number,omitempty"`
	AddressComplement   *string              `json:"address_complement,omitempty"`
	AddressNeighborhood *string              `json:"address_neighborhood,omitempty"`
	AddressCity         *string              `json:"address_city,omitempty"`
	AddressState        *string              `json:"address_state,omitempty"`
	AddressZip          *string              `json:"address_zip,omitempty"`
	MapURL              *string              `json:"map_url,omitempty"`
	LogoPath            *string              `json:"logo_path,omitempty"`
	PublicSlug          *string              `json:"public_slug,omitempty"`
	SocialLinks         types.SocialLinks    `json:"social_links,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// FromModel maps a persisted business onto its DTO.
func FromModel(m *models.Business) *BusinessDTO {
	if m == nil {
		return nil
	}
	return &BusinessDTO{
		ID:                  m.ID,
		TenantID:            m.TenantID,
		Status:              m.Status,
		Name:                m.Name,
		Description:         m.Description,
		PhoneCommercial:     m.PhoneCommercial,
		MobileCommercial:    m.MobileCommercial,
		EmailCommercial:     m.EmailCommercial,
		AddressStreet:       m.AddressStreet,
		AddressNumber:       m.AddressNumber,
		AddressComplement:   m.AddressComplement,
		AddressNeighborhood: m.AddressNeighborhood,
		AddressCity:         m.AddressCity,
		AddressState:        m.AddressState,
		AddressZip:          m.AddressZip,
		MapURL:              m.MapURL,
		LogoPath:            m.LogoPath,
		PublicSlug:          m.PublicSlug,
		SocialLinks:         m.SocialLinks,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}
