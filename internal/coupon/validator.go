package coupon

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cashya/shoppy-backend/pkg/db/models"
	pkgerrors "github.com/cashya/shoppy-backend/pkg/errors"
)

// Validate checks whether the coupon may be applied to an order of the given
// subtotal at the given instant. Checks run in a fixed order and the first
// failure wins: active (and quantity when limited), valid_from, valid_to,
// minimum order value. On success the normalized code is returned.
func Validate(subtotal decimal.Decimal, c *models.Coupon, now time.Time) (string, error) {
	if c == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "coupon is required")
	}

	if !c.Active {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "coupon is not active")
	}
	if c.Quantity != nil && *c.Quantity <= 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "coupon is exhausted")
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "coupon is not yet valid")
	}
	if c.ValidTo != nil && now.After(*c.ValidTo) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "coupon has expired")
	}
	if c.MinimumOrderValue != nil && subtotal.LessThan(*c.MinimumOrderValue) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order total is below the coupon minimum").
			WithDetails(map[string]any{"minimum_order_value": c.MinimumOrderValue.String()})
	}

	return NormalizeCode(c.Code), nil
}
