package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cashya/shoppy-backend/pkg/enums"
)

// Order is an immutable record of a completed checkout. Address fields are a
// snapshot taken at finalization; later address edits never touch past orders.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	CouponID    *uuid.UUID        `gorm:"column:coupon_id;type:uuid"`
	Coupon      *Coupon           `gorm:"foreignKey:CouponID"`
	PaymentMode enums.PaymentMode `gorm:"column:payment_mode;not null"`

	Name                 string `gorm:"column:name;not null"`
	Address              string `gorm:"column:address;not null"`
	City                 string `gorm:"column:city;not null"`
	State                string `gorm:"column:state;not null"`
	Pincode              string `gorm:"column:pincode;not null"`
	Landmark             string `gorm:"column:landmark"`
	PhoneNumber          string `gorm:"column:phone_number;not null"`
	AlternatePhoneNumber string `gorm:"column:alternate_phone_number"`

	Total decimal.Decimal `gorm:"column:total;type:numeric(10,2);not null"`

	// Status mirrors the highest-ordinal entry in Statuses so list queries
	// never need the join.
	Status enums.OrderStatusOrdinal `gorm:"column:status;not null;default:0"`

	Items    []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Statuses []OrderStatus `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem freezes the product naming and the variant's price and mrp at
// checkout time.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	VariantID   uuid.UUID       `gorm:"column:variant_id;type:uuid;not null"`
	Variant     *ProductVariant `gorm:"foreignKey:VariantID"`
	ProductName string          `gorm:"column:product_name;not null"`
	VariantName string          `gorm:"column:variant_name;not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	MRP         decimal.Decimal `gorm:"column:mrp;type:numeric(10,2);not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Total is quantity times the frozen price.
func (i OrderItem) Total() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderStatus is one entry in an order's status history. An order carries at
// most one entry per ordinal.
type OrderStatus struct {
	ID        uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID                `gorm:"column:order_id;type:uuid;not null;uniqueIndex:idx_order_status"`
	Status    enums.OrderStatusOrdinal `gorm:"column:status;not null;uniqueIndex:idx_order_status"`
	CreatedAt time.Time                `gorm:"column:created_at;autoCreateTime"`
}

func (s *OrderStatus) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
