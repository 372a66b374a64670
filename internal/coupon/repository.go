package coupon

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cashya/shoppy-backend/pkg/db/models"
)

// Repository exposes coupon persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the coupon by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).First(&coupon, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

// FindByCode loads the coupon by its normalized uppercase code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	normalized := NormalizeCode(code)
	if err := r.db.WithContext(ctx).First(&coupon, "code = ?", normalized).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

// RedeemOne decrements the remaining quantity of a limited coupon. The guard
// keeps concurrent checkouts from pushing the count below zero; the boolean
// reports whether a row was actually consumed. Unlimited coupons always
// redeem without touching the row.
func (r *Repository) RedeemOne(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("id = ? AND quantity IS NOT NULL AND quantity > 0", id).
		UpdateColumn("quantity", gorm.Expr("quantity - 1"))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	// Distinguish unlimited coupons from exhausted ones.
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).Select("quantity").First(&coupon, "id = ?", id).Error; err != nil {
		return false, err
	}
	return coupon.Quantity == nil, nil
}

// NormalizeCode uppercases and trims a user-supplied coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
