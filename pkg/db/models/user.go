package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the phone-first account record. Phone numbers are stored in E.164.
type User struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	PhoneNumber string    `gorm:"column:phone_number;not null;uniqueIndex"`
	Email       *string   `gorm:"column:email"`
	Admin       bool      `gorm:"column:admin;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
