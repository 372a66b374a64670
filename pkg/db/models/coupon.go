package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cashya/shoppy-backend/pkg/enums"
)

// Coupon is a discount code with optional validity window, order minimum and
// remaining redemption quantity (nil = unlimited).
type Coupon struct {
	ID                uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Code              string           `gorm:"column:code;not null;uniqueIndex"`
	Discount          decimal.Decimal  `gorm:"column:discount;type:numeric(10,2);not null"`
	CouponType        enums.CouponType `gorm:"column:coupon_type;not null;default:'percentage'"`
	Active            bool             `gorm:"column:active;not null"`
	ValidFrom         *time.Time       `gorm:"column:valid_from"`
	ValidTo           *time.Time       `gorm:"column:valid_to"`
	MinimumOrderValue *decimal.Decimal `gorm:"column:minimum_order_value;type:numeric(10,2)"`
	Quantity          *int             `gorm:"column:quantity"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
