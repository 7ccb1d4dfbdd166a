package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vitrinehub/vitrine-backend/api/responses"
	"github.com/vitrinehub/vitrine-backend/api/validators"
	"github.com/vitrinehub/vitrine-backend/internal/accounts"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	"github.com/vitrinehub/vitrine-backend/pkg/logger"
	"github.com/vitrinehub/vitrine-backend/pkg/pagination"
)

type changeAccountStatusRequest struct {
	ToStatus string  `json:"to_status" validate:"required"`
	Reason   string  `json:"reason" validate:"required,min=3,max=500"`
	ActorID  *string `json:"actor_id,omitempty" validate:"omitempty,uuid4"`
}

func accountIDFromURL(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "accountId"))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid account id")
	}
	return id, nil
}

func AdminAccountGet(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := accountIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetByID(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// AdminAccountChangeStatus drives the account status machine with an
// auditable reason.
func AdminAccountChangeStatus(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := accountIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body changeAccountStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := accounts.ChangeStatusInput{
			AccountID: accountID,
			ToStatus:  enums.AccountStatus(body.ToStatus),
			Reason:    validators.SanitizeString(body.Reason, 500),
			ActorType: enums.ActorTypeAdmin,
		}
		if body.ActorID != nil {
			actorID, err := uuid.Parse(*body.ActorID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid actor id"))
				return
			}
			input.ActorID = &actorID
		}

		dto, err := svc.ChangeStatus(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func AdminAccountStatusEvents(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := accountIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page := pagination.Params{Cursor: r.URL.Query().Get("cursor")}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be an integer"))
				return
			}
			page.Limit = limit
		}

		events, err := svc.ListStatusEvents(r.Context(), accountID, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, events)
	}
}
