package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cashya/shoppy-backend/pkg/enums"
)

// Cart is the user's single open basket. A cart survives checkout; only its
// items are cleared, so the coupon reference persists until replaced.
type Cart struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID         `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	CouponID    *uuid.UUID        `gorm:"column:coupon_id;type:uuid"`
	Coupon      *Coupon           `gorm:"foreignKey:CouponID"`
	AddressID   *uuid.UUID        `gorm:"column:address_id;type:uuid"`
	Address     *Address          `gorm:"foreignKey:AddressID"`
	PaymentMode enums.PaymentMode `gorm:"column:payment_mode;not null;default:'cod'"`
	Items       []CartItem        `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CartItem holds one variant at a quantity. A variant appears at most once
// per cart; adds of an existing variant are rejected, not merged.
type CartItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CartID    uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_variant"`
	VariantID uuid.UUID       `gorm:"column:variant_id;type:uuid;not null;uniqueIndex:idx_cart_variant"`
	Variant   *ProductVariant `gorm:"foreignKey:VariantID"`
	Quantity  int             `gorm:"column:quantity;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
