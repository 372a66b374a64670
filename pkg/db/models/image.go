package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Image stores an uploaded asset by object key; URLs are resolved against the
// configured media base at serialization time.
type Image struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Path      string    `gorm:"column:path;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// ProductImage orders gallery images under a product.
type ProductImage struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	ImageID   uuid.UUID `gorm:"column:image_id;type:uuid;not null"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0"`
	Image     *Image    `gorm:"foreignKey:ImageID"`
}

func (p *ProductImage) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
