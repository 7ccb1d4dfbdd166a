package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
)

// ProductDTO is the API-facing shape of a catalog item.
type ProductDTO struct {
	ID               uuid.UUID           `json:"id"`
	BusinessID       uuid.UUID           `json:"business_id"`
	Status           enums.ProductStatus `json:"status"`
	Type             enums.ProductType   `json:"type"`
	Title            string              `json:"title"`
	ShortDescription *string             `json:"short_description,omitempty"`
	Description      *string             `json:"description,omitempty"`
	PriceCents       *int64              `json:"price_cents,omitempty"`
	Currency         *string             `json:"currency,omitempty"`
	CTALabel         *string             `json:"cta_label,omitempty"`
	ImageURL         *string             `json:"image_url,omitempty"`
	Position         int                 `json:"position"`
	PublishedAt      *time.Time          `json:"published_at,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// FromModel maps a persisted product onto its DTO.
func FromModel(m *models.Product) *ProductDTO {
	if m == nil {
		return nil
	}
	return &ProductDTO{
		ID:               m.ID,
		BusinessID:       m.BusinessID,
		Status:           m.Status,
		Type:             m.Type,
		Title:            m.Title,
		ShortDescription: m.ShortDescription,
		Description:      m.Description,
		PriceCents:       m.PriceCents,
		Currency:         m.Currency,
		CTALabel:         m.CTALabel,
		ImageURL:         m.ImageURL,
		Position:         m.Position,
		PublishedAt:      m.PublishedAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// FromModels maps a slice preserving order.
func FromModels(items []models.Product) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, *FromModel(&items[i]))
	}
	return dtos
}
