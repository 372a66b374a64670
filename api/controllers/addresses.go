package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cashya/shoppy-backend/api/middleware"
	"github.com/cashya/shoppy-backend/api/responses"
	"github.com/cashya/shoppy-backend/api/validators"
	"github.com/cashya/shoppy-backend/internal/address"
	pkgerrors "github.com/cashya/shoppy-backend/pkg/errors"
	"github.com/cashya/shoppy-backend/pkg/logger"
)

type addressPayload struct {
	Name                 string `json:"name" validate:"required,max=120"`
	Address              string `json:"address" validate:"required,max=500"`
	City                 string `json:"city" validate:"required,max=120"`
	State                string `json:"state" validate:"required,max=120"`
	Pincode              string `json:"pincode" validate:"required,max=12"`
	Landmark             string `json:"landmark" validate:"max=200"`
	PhoneNumber          string `json:"phone_number" validate:"required"`
	AlternatePhoneNumber string `json:"alternate_phone_number"`
	Nickname             string `json:"nickname" validate:"max=60"`
	Selected             bool   `json:"selected"`
}

func (p addressPayload) toInput() address.Input {
	return address.Input{
		Name:                 p.Name,
		Address:              p.Address,
		City:                 p.City,
		State:                p.State,
		Pincode:              p.Pincode,
		Landmark:             p.Landmark,
		PhoneNumber:          p.PhoneNumber,
		AlternatePhoneNumber: p.AlternatePhoneNumber,
		Nickname:             p.Nickname,
		Selected:             p.Selected,
	}
}

// AddressList returns the user's address book.
func AddressList(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		addresses, err := svc.ListAddresses(ctx, middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, addresses)
	}
}

// AddressDetail returns one address.
func AddressDetail(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		addressID, err := validators.ParsePathUUID(chi.URLParam(r, "addressId"), "addressId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.GetAddress(ctx, middleware.UserIDFromContext(ctx), addressID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// AddressCreate saves a new address; the first one becomes the default.
func AddressCreate(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		var payload addressPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.CreateAddress(ctx, middleware.UserIDFromContext(ctx), payload.toInput())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// AddressUpdate rewrites an address; selection changes repoint the cart.
func AddressUpdate(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		addressID, err := validators.ParsePathUUID(chi.URLParam(r, "addressId"), "addressId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload addressPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.UpdateAddress(ctx, middleware.UserIDFromContext(ctx), addressID, payload.toInput())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// AddressDelete removes an address.
func AddressDelete(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		addressID, err := validators.ParsePathUUID(chi.URLParam(r, "addressId"), "addressId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.DeleteAddress(ctx, middleware.UserIDFromContext(ctx), addressID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
