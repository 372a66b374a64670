package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Address is a user's saved shipping destination. At most one per user is
// selected; the selected address is what checkout snapshots onto the order.
type Address struct {
	ID                   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID               uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Name                 string    `gorm:"column:name;not null"`
	Address              string    `gorm:"column:address;not null"`
	City                 string    `gorm:"column:city;not null"`
	State                string    `gorm:"column:state;not null"`
	Pincode              string    `gorm:"column:pincode;not null"`
	Landmark             string    `gorm:"column:landmark"`
	PhoneNumber          string    `gorm:"column:phone_number;not null"`
	AlternatePhoneNumber string    `gorm:"column:alternate_phone_number"`
	Nickname             string    `gorm:"column:nickname"`
	Selected             bool      `gorm:"column:selected;not null;default:false"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
