package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cashya/shoppy-backend/pkg/db/models"
	"github.com/cashya/shoppy-backend/pkg/money"
)

// ItemDTO is one frozen order line.
type ItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	VariantID   uuid.UUID       `json:"variant_id"`
	ProductName string          `json:"product_name"`
	VariantName string          `json:"variant_name"`
	Quantity    int             `json:"quantity"`
	MRP         decimal.Decimal `json:"mrp"`
	Price       decimal.Decimal `json:"price"`
	Total       decimal.Decimal `json:"total"`
}

// StatusDTO is one entry of the status history.
type StatusDTO struct {
	ID        uuid.UUID `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// AddressDTO is the address snapshot frozen at checkout.
type AddressDTO struct {
	Name                 string `json:"name"`
	Address              string `json:"address"`
	City                 string `json:"city"`
	State                string `json:"state"`
	Pincode              string `json:"pincode"`
	Landmark             string `json:"landmark,omitempty"`
	PhoneNumber          string `json:"phone_number"`
	AlternatePhoneNumber string `json:"alternate_phone_number,omitempty"`
}

// DTO is the order payload returned to clients. Status carries the display
// name of the highest history ordinal.
type DTO struct {
	ID          uuid.UUID       `json:"id"`
	Status      string          `json:"status"`
	PaymentMode string          `json:"payment_mode"`
	Total       decimal.Decimal `json:"total"`
	Address     AddressDTO      `json:"address"`
	Items       []ItemDTO       `json:"items"`
	Statuses    []StatusDTO     `json:"statuses"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ListDTO is one page of orders with pagination metadata.
type ListDTO struct {
	Orders   []DTO `json:"orders"`
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

func toItemDTO(i models.OrderItem) ItemDTO {
	return ItemDTO{
		ID:          i.ID,
		VariantID:   i.VariantID,
		ProductName: i.ProductName,
		VariantName: i.VariantName,
		Quantity:    i.Quantity,
		MRP:         i.MRP,
		Price:       i.Price,
		Total:       money.Round2(i.Total()),
	}
}

func toStatusDTO(s models.OrderStatus) StatusDTO {
	return StatusDTO{
		ID:        s.ID,
		Status:    s.Status.String(),
		CreatedAt: s.CreatedAt,
	}
}

// ToDTO converts an order row into its response payload.
func ToDTO(o models.Order) DTO {
	items := make([]ItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, toItemDTO(item))
	}
	statuses := make([]StatusDTO, 0, len(o.Statuses))
	for _, status := range o.Statuses {
		statuses = append(statuses, toStatusDTO(status))
	}
	return DTO{
		ID:          o.ID,
		Status:      o.Status.String(),
		PaymentMode: string(o.PaymentMode),
		Total:       o.Total,
		Address: AddressDTO{
			Name:                 o.Name,
			Address:              o.Address,
			City:                 o.City,
			State:                o.State,
			Pincode:              o.Pincode,
			Landmark:             o.Landmark,
			PhoneNumber:          o.PhoneNumber,
			AlternatePhoneNumber: o.AlternatePhoneNumber,
		},
		Items:     items,
		Statuses:  statuses,
		CreatedAt: o.CreatedAt,
	}
}
