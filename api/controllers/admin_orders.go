package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cashya/shoppy-backend/api/responses"
	"github.com/cashya/shoppy-backend/api/validators"
	"github.com/cashya/shoppy-backend/internal/orders"
	"github.com/cashya/shoppy-backend/pkg/enums"
	pkgerrors "github.com/cashya/shoppy-backend/pkg/errors"
	"github.com/cashya/shoppy-backend/pkg/logger"
)

type appendStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

// AdminOrderAppendStatus adds a lifecycle entry to an order's history and
// promotes the denormalized status when the entry outranks it.
func AdminOrderAppendStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload appendStatusPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ordinal, ok := enums.ParseOrderStatus(payload.Status)
		if !ok {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").
					WithDetails(map[string]any{"statuses": enums.OrderStatusNames()}))
			return
		}

		dto, err := svc.AppendStatus(ctx, orderID, ordinal)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// AdminOrderRemoveStatus deletes a history entry and reverts the denormalized
// status to the highest remaining one.
func AdminOrderRemoveStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		statusID, err := validators.ParsePathUUID(chi.URLParam(r, "statusId"), "statusId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.RemoveStatus(ctx, orderID, statusID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
