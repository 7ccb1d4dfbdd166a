package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vitrinehub/vitrine-backend/api/responses"
	"github.com/vitrinehub/vitrine-backend/api/validators"
	"github.com/vitrinehub/vitrine-backend/internal/business"
	"github.com/vitrinehub/vitrine-backend/internal/products"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	"github.com/vitrinehub/vitrine-backend/pkg/logger"
)

type createProductRequest struct {
	Type *enums.ProductType `json:"type,omitempty"`
}

type updateProductRequest struct {
	Type             *enums.ProductType `json:"type,omitempty"`
	Title            *string            `json:"title,omitempty" validate:"omitempty,min=1,max=160"`
	ShortDescription *string            `json:"short_description,omitempty" validate:"omitempty,max=300"`
	Description      *string            `json:"description,omitempty" validate:"omitempty,max=5000"`
	PriceCents       *int64             `json:"price_cents,omitempty" validate:"omitempty,min=0"`
	Currency         *string            `json:"currency,omitempty" validate:"omitempty,len=3"`
	CTALabel         *string            `json:"cta_label,omitempty" validate:"omitempty,max=60"`
	ImageURL         *string            `json:"image_url,omitempty" validate:"omitempty,url,max=500"`
	Position         *int               `json:"position,omitempty" validate:"omitempty,min=0"`
}

// businessIDFromRequest maps the caller's tenant onto its business.
func businessIDFromRequest(r *http.Request, businessSvc business.Service) (uuid.UUID, error) {
	tenantID, err := tenantFromRequest(r)
	if err != nil {
		return uuid.Nil, err
	}
	biz, err := businessSvc.GetByTenantID(r.Context(), tenantID)
	if err != nil {
		return uuid.Nil, err
	}
	return biz.ID, nil
}

func productIDFromURL(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "productId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}
	return id, nil
}

func ProductList(svc products.Service, businessSvc business.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, err := businessIDFromRequest(r, businessSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.List(r.Context(), businessID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func ProductCreate(svc products.Service, businessSvc business.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, err := businessIDFromRequest(r, businessSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.CreateDraft(r.Context(), businessID, products.CreateProductInput{Type: body.Type})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func ProductUpdate(svc products.Service, businessSvc business.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, err := businessIDFromRequest(r, businessSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := productIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), businessID, productID, products.UpdateProductInput{
			Type:             body.Type,
			Title:            validators.SanitizeStringPtr(body.Title, 160),
			ShortDescription: validators.SanitizeStringPtr(body.ShortDescription, 300),
			Description:      validators.SanitizeStringPtr(body.Description, 5000),
			PriceCents:       body.PriceCents,
			Currency:         body.Currency,
			CTALabel:         validators.SanitizeStringPtr(body.CTALabel, 60),
			ImageURL:         validators.SanitizeStringPtr(body.ImageURL, 500),
			Position:         body.Position,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ProductPublish(svc products.Service, businessSvc business.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, err := businessIDFromRequest(r, businessSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := productIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Publish(r.Context(), businessID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ProductArchive(svc products.Service, businessSvc business.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, err := businessIDFromRequest(r, businessSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := productIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Archive(r.Context(), businessID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
