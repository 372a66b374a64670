package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/cashya/shoppy-backend/api/responses"
	"github.com/cashya/shoppy-backend/api/validators"
	"github.com/cashya/shoppy-backend/internal/catalog"
	pkgerrors "github.com/cashya/shoppy-backend/pkg/errors"
	"github.com/cashya/shoppy-backend/pkg/logger"
	"github.com/cashya/shoppy-backend/pkg/money"
)

type updateVariantPayload struct {
	Available *bool   `json:"available"`
	Price     *string `json:"price"`
	MRP       *string `json:"mrp"`
	Stock     *int    `json:"stock"`
}

// AdminVariantUpdate patches a variant's availability, pricing or stock.
// Taking a variant off sale also removes it from every cart.
func AdminVariantUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		variantID, err := validators.ParsePathUUID(chi.URLParam(r, "variantId"), "variantId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateVariantPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := catalog.UpdateVariantInput{
			Available: payload.Available,
			Stock:     payload.Stock,
		}
		if payload.Price != nil {
			price, err := parseMoney(*payload.Price, "price")
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			input.Price = &price
		}
		if payload.MRP != nil {
			mrp, err := parseMoney(*payload.MRP, "mrp")
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			input.MRP = &mrp
		}

		dto, err := svc.UpdateVariant(ctx, variantID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func parseMoney(raw, field string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "must be a decimal amount").
			WithDetails(map[string]any{"field": field})
	}
	return money.Round2(value), nil
}
