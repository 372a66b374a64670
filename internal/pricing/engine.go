package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cashya/shoppy-backend/internal/coupon"
	"github.com/cashya/shoppy-backend/pkg/config"
	"github.com/cashya/shoppy-backend/pkg/db/models"
	"github.com/cashya/shoppy-backend/pkg/enums"
	"github.com/cashya/shoppy-backend/pkg/money"
)

var oneHundred = decimal.NewFromInt(100)

// Engine computes the order price breakdown. It is constructed once from
// configuration and safe for concurrent use.
type Engine struct {
	pgChargePct         decimal.Decimal
	minimumTotalFloor   decimal.Decimal
	collectFromCustomer bool
}

// NewEngine builds an engine from the pricing configuration. Malformed
// numeric settings fall back to zero, matching money.FromString.
func NewEngine(cfg config.PricingConfig) *Engine {
	return &Engine{
		pgChargePct:         money.FromString(cfg.PaymentGatewayChargePct),
		minimumTotalFloor:   money.FromString(cfg.MinimumTotalFloor),
		collectFromCustomer: cfg.CollectFromCustomer,
	}
}

// Breakdown is the full price decomposition returned with cart and order views.
type Breakdown struct {
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Shipping   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	PaymentFee decimal.Decimal
}

// Discount returns the amount taken off the subtotal by the coupon. An
// absent or invalid coupon contributes nothing; validation failures are
// swallowed here because the cart keeps its coupon reference even when the
// subtotal drifts out of the coupon's bounds.
func (e *Engine) Discount(subtotal decimal.Decimal, c *models.Coupon, now time.Time) decimal.Decimal {
	if c == nil {
		return decimal.Zero
	}
	if _, err := coupon.Validate(subtotal, c, now); err != nil {
		return decimal.Zero
	}

	switch c.CouponType {
	case enums.CouponTypePercentage:
		return money.Round2(subtotal.Mul(c.Discount).Div(oneHundred))
	case enums.CouponTypeFixed:
		amount := money.Round2(c.Discount)
		// A fixed discount covering the whole subtotal collapses to the
		// configured floor amount, so the order stays near full price
		// instead of near free.
		if subtotal.Sub(amount).Cmp(decimal.Zero) <= 0 {
			return money.Round2(e.minimumTotalFloor)
		}
		return amount
	default:
		return decimal.Zero
	}
}

// Shipping is free for every order.
func (e *Engine) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	return decimal.Zero
}

// Tax is included in displayed prices.
func (e *Engine) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return decimal.Zero
}

// Total combines the components into the amount charged.
func (e *Engine) Total(subtotal, discount, shipping, tax decimal.Decimal) decimal.Decimal {
	return money.Round2(subtotal.Sub(discount).Add(shipping).Add(tax))
}

// PaymentFee grosses the amount up so the configured gateway percentage of
// the charged figure equals the fee: charge = amount / (1 - pct/100). The
// returned value is the full amount collected through the gateway; when fees
// are not passed on to the customer it equals the input.
func (e *Engine) PaymentFee(amount decimal.Decimal) decimal.Decimal {
	if !e.collectFromCustomer || e.pgChargePct.IsZero() {
		return money.Round2(amount)
	}
	rate := decimal.NewFromInt(1).Sub(e.pgChargePct.Div(oneHundred))
	if rate.Cmp(decimal.Zero) <= 0 {
		return money.Round2(amount)
	}
	return money.Round2(amount.Div(rate))
}

// Quote computes the whole breakdown for a subtotal and optional coupon.
func (e *Engine) Quote(subtotal decimal.Decimal, c *models.Coupon, now time.Time) Breakdown {
	discount := e.Discount(subtotal, c, now)
	shipping := e.Shipping(subtotal)
	tax := e.Tax(subtotal)
	total := e.Total(subtotal, discount, shipping, tax)
	return Breakdown{
		Subtotal:   money.Round2(subtotal),
		Discount:   discount,
		Shipping:   shipping,
		Tax:        tax,
		Total:      total,
		PaymentFee: e.PaymentFee(total),
	}
}
