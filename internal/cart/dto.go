package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cashya/shoppy-backend/internal/pricing"
	"github.com/cashya/shoppy-backend/pkg/db/models"
	"github.com/cashya/shoppy-backend/pkg/enums"
	"github.com/cashya/shoppy-backend/pkg/money"
)

// ItemDTO is one cart line with its current variant pricing.
type ItemDTO struct {
	VariantID   uuid.UUID       `json:"variant_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	VariantName string          `json:"variant_name"`
	MRP         decimal.Decimal `json:"mrp"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// CouponDTO is the applied coupon summary inside a cart view.
type CouponDTO struct {
	Code       string           `json:"code"`
	CouponType enums.CouponType `json:"coupon_type"`
	Discount   decimal.Decimal  `json:"discount"`
}

// DTO is the full cart view: lines plus the price breakdown.
type DTO struct {
	ID          uuid.UUID         `json:"id"`
	Items       []ItemDTO         `json:"items"`
	Coupon      *CouponDTO        `json:"coupon,omitempty"`
	AddressID   *uuid.UUID        `json:"address_id,omitempty"`
	PaymentMode enums.PaymentMode `json:"payment_mode"`
	Subtotal    decimal.Decimal   `json:"sub_total"`
	Discount    decimal.Decimal   `json:"discount"`
	Shipping    decimal.Decimal   `json:"shipping"`
	Tax         decimal.Decimal   `json:"tax"`
	Total       decimal.Decimal   `json:"total"`
	PaymentFee  decimal.Decimal   `json:"payment_fee"`
}

// Subtotal sums price times quantity across the cart lines, rounded once at
// the end the way the storefront displays it.
func Subtotal(items []models.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		if item.Variant == nil {
			continue
		}
		sum = sum.Add(item.Variant.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return money.Round2(sum)
}

func toDTO(c *models.Cart, breakdown pricing.Breakdown) *DTO {
	dto := &DTO{
		ID:          c.ID,
		Items:       make([]ItemDTO, 0, len(c.Items)),
		AddressID:   c.AddressID,
		PaymentMode: c.PaymentMode,
		Subtotal:    breakdown.Subtotal,
		Discount:    breakdown.Discount,
		Shipping:    breakdown.Shipping,
		Tax:         breakdown.Tax,
		Total:       breakdown.Total,
		PaymentFee:  breakdown.PaymentFee,
	}
	if c.Coupon != nil {
		dto.Coupon = &CouponDTO{
			Code:       c.Coupon.Code,
			CouponType: c.Coupon.CouponType,
			Discount:   c.Coupon.Discount,
		}
	}
	for _, item := range c.Items {
		if item.Variant == nil {
			continue
		}
		line := ItemDTO{
			VariantID:   item.VariantID,
			ProductID:   item.Variant.ProductID,
			VariantName: item.Variant.Name,
			MRP:         item.Variant.MRP,
			Price:       item.Variant.Price,
			Quantity:    item.Quantity,
			LineTotal:   money.Round2(item.Variant.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))),
		}
		if item.Variant.Product != nil {
			line.ProductName = item.Variant.Product.Name
		}
		dto.Items = append(dto.Items, line)
	}
	return dto
}
