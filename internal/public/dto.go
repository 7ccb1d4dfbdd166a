package public

import (
	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
	"github.com/vitrinehub/vitrine-backend/pkg/types"
)

// SiteDTO is the anonymous storefront view of a published business.
// Tenant and row identifiers stay internal.
type SiteDTO struct {
	Slug                string            `json:"slug"`
	Name                string            `json:"name"`
	Description         *string           `json:"description,omitempty"`
	PhoneCommercial     *string           `json:"phone_commercial,omitempty"`
	MobileCommercial    *string           `json:"mobile_commercial,omitempty"`
	EmailCommercial     *string           `json:"email_commercial,omitempty"`
	AddressStreet       *string           `json:"address_street,omitempty"`
	AddressNumber       *string           `json:"address_number,omitempty"`
	AddressComplement   *string           `json:"address_complement,omitempty"`
	AddressNeighborhood *string           `json:"address_neighborhood,omitempty"`
	AddressCity         *string           `json:"address_city,omitempty"`
	AddressState        *string           `json:"address_state,omitempty"`
	AddressZip          *string           `json:"address_zip,omitempty"`
	MapURL              *string           `json:"map_url,omitempty"`
	LogoPath            *string           `json:"logo_path,omitempty"`
	SocialLinks         types.SocialLinks `json:"social_links,omitempty"`
	Products            []SiteProductDTO  `json:"products"`
}

// SiteProductDTO is the public catalog entry.
type SiteProductDTO struct {
	Type             enums.ProductType `json:"type"`
	Title            string            `json:"title"`
	ShortDescription *string           `json:"short_description,omitempty"`
	Description      *string           `json:"description,omitempty"`
	PriceCents       *int64            `json:"price_cents,omitempty"`
	Currency         *string           `json:"currency,omitempty"`
	CTALabel         *string           `json:"cta_label,omitempty"`
	ImageURL         *string           `json:"image_url,omitempty"`
	Position         int               `json:"position"`
}

func siteFromModels(biz *models.Business, items []models.Product) *SiteDTO {
	site := &SiteDTO{
		Name:                biz.Name,
		Description:         biz.Description,
		PhoneCommercial:     biz.PhoneCommercial,
		MobileCommercial:    biz.MobileCommercial,
		EmailCommercial:     biz.EmailCommercial,
		AddressStreet:       biz.AddressStreet,
		AddressNumber:       biz.AddressNumber,
		AddressComplement:   biz.AddressComplement,
		AddressNeighborhood: biz.AddressNeighborhood,
		AddressCity:         biz.AddressCity,
		AddressState:        biz.AddressState,
		AddressZip:          biz.AddressZip,
		MapURL:              biz.MapURL,
		LogoPath:            biz.LogoPath,
		SocialLinks:         biz.SocialLinks,
		Products:            make([]SiteProductDTO, 0, len(items)),
	}
	if biz.PublicSlug != nil {
		site.Slug = *biz.PublicSlug
	}
	for i := range items {
		p := &items[i]
		site.Products = append(site.Products, SiteProductDTO{
			Type:             p.Type,
			Title:            p.Title,
			ShortDescription: p.ShortDescription,
			Description:      p.Description,
			PriceCents:       p.PriceCents,
			Currency:         p.Currency,
			CTALabel:         p.CTALabel,
			ImageURL:         p.ImageURL,
			Position:         p.Position,
		})
	}
	return site
}
