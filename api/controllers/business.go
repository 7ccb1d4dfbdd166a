package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/vitrinehub/vitrine-backend/api/middleware"
	"github.com/vitrinehub/vitrine-backend/api/responses"
	"github.com/vitrinehub/vitrine-backend/api/validators"
	"github.com/vitrinehub/vitrine-backend/internal/business"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	"github.com/vitrinehub/vitrine-backend/pkg/logger"
	"github.com/vitrinehub/vitrine-backend/pkg/types"
)

type createBusinessRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=160"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

type updateBusinessRequest struct {
	Name                *string            `json:"name,omitempty" validate:"omitempty,min=2,max=160"`
	Description         *string            `json:"description,omitempty" validate:"omitempty,max=2000"`
	PhoneCommercial     *string            `json:"phone_commercial,omitempty" validate:"omitempty,max=32"`
	MobileCommercial    *string            `json:"mobile_commercial,omitempty" validate:"omitempty,max=32"`
	EmailCommercial     *string            `json:"email_commercial,omitempty" validate:"omitempty,email"`
	AddressStreet       *string            `json:"address_street,omitempty" validate:"omitempty,max=200"`
	AddressNumber       *string            `json:"address_number,omitempty" validate:"omitempty,max=20"`
	AddressComplement   *string            `json:"address_complement,omitempty" validate:"omitempty,max=100"`
	AddressNeighborhood *string            `json:"address_neighborhood,omitempty" validate:"omitempty,max=100"`
	AddressCity         *string            `json:"address_city,omitempty" validate:"omitempty,max=100"`
	AddressState        *string            `json:"address_state,omitempty" validate:"omitempty,max=50"`
	AddressZip          *string            `json:"address_zip,omitempty" validate:"omitempty,max=20"`
	MapURL              *string            `json:"map_url,omitempty" validate:"omitempty,url,max=500"`
	LogoPath            *string            `json:"logo_path,omitempty" validate:"omitempty,max=500"`
	PublicSlug          *string            `json:"public_slug,omitempty" validate:"omitempty,max=32"`
	SocialLinks         *types.SocialLinks `json:"social_links,omitempty"`
}

// tenantFromRequest reads the tenant from the authenticated claims.
func tenantFromRequest(r *http.Request) (uuid.UUID, error) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil || claims.TenantID == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "account not provisioned")
	}
	return *claims.TenantID, nil
}

func BusinessCreate(svc business.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createBusinessRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), tenantID, business.CreateBusinessInput{
			Name:        validators.SanitizeString(body.Name, 160),
			Description: validators.SanitizeStringPtr(body.Description, 2000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func BusinessGetMine(svc business.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetByTenantID(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func BusinessUpdate(svc business.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateBusinessRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), tenantID, business.UpdateBusinessInput{
			Name:                validators.SanitizeStringPtr(body.Name, 160),
			Description:         validators.SanitizeStringPtr(body.Description, 2000),
			PhoneCommercial:     validators.SanitizeStringPtr(body.PhoneCommercial, 32),
			MobileCommercial:    validators.SanitizeStringPtr(body.MobileCommercial, 32),
			EmailCommercial:     validators.SanitizeStringPtr(body.EmailCommercial, 254),
			AddressStreet:       validators.SanitizeStringPtr(body.AddressStreet, 200),
			AddressNumber:       validators.SanitizeStringPtr(body.AddressNumber, 20),
			AddressComplement:   validators.SanitizeStringPtr(body.AddressComplement, 100),
			AddressNeighborhood: validators.SanitizeStringPtr(body.AddressNeighborhood, 100),
			AddressCity:         validators.SanitizeStringPtr(body.AddressCity, 100),
			AddressState:        validators.SanitizeStringPtr(body.AddressState, 50),
			AddressZip:          validators.SanitizeStringPtr(body.AddressZip, 20),
			MapURL:              validators.SanitizeStringPtr(body.MapURL, 500),
			LogoPath:            validators.SanitizeStringPtr(body.LogoPath, 500),
			PublicSlug:          body.PublicSlug,
			SocialLinks:         body.SocialLinks,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func BusinessPublish(svc business.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Publish(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
