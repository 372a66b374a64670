package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cashya/shoppy-backend/pkg/db/models"
	"github.com/cashya/shoppy-backend/pkg/enums"
	"github.com/cashya/shoppy-backend/pkg/pagination"
)

// Repository exposes order persistence helpers.
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

// Create inserts the order together with its items and statuses.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// ListByUser returns one page of the user's orders, newest first, with the
// total count for pagination.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]models.Order, int64, error) {
	page = page.Normalize()

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query.
		Preload("Items").
		Preload("Statuses", func(db *gorm.DB) *gorm.DB {
			return db.Order("status ASC")
		}).
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// FindByIDForUser loads one order owned by the user with items and history.
func (r *Repository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Statuses", func(db *gorm.DB) *gorm.DB {
			return db.Order("status ASC")
		}).
		Preload("Coupon").
		First(&order, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByID loads one order regardless of owner. Admin surface only.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Statuses", func(db *gorm.DB) *gorm.DB {
			return db.Order("status ASC")
		}).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateStatus appends a history entry. The unique index on (order_id,
// status) rejects duplicates.
func (r *Repository) CreateStatus(ctx context.Context, status *models.OrderStatus) error {
	return r.db.WithContext(ctx).Create(status).Error
}

// StatusExists reports whether the order already carries the ordinal.
func (r *Repository) StatusExists(ctx context.Context, orderID uuid.UUID, ordinal enums.OrderStatusOrdinal) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderStatus{}).
		Where("order_id = ? AND status = ?", orderID, ordinal).
		Count(&count).Error
	return count > 0, err
}

// FindStatus loads one history entry of the order.
func (r *Repository) FindStatus(ctx context.Context, orderID, statusID uuid.UUID) (*models.OrderStatus, error) {
	var status models.OrderStatus
	err := r.db.WithContext(ctx).
		First(&status, "id = ? AND order_id = ?", statusID, orderID).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// DeleteStatus removes a history entry, reporting whether a row went away.
func (r *Repository) DeleteStatus(ctx context.Context, orderID, statusID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND order_id = ?", statusID, orderID).
		Delete(&models.OrderStatus{})
	return res.RowsAffected, res.Error
}

// HighestStatus returns the highest ordinal present in the order's history.
// Orders always carry at least the initial pending entry.
func (r *Repository) HighestStatus(ctx context.Context, orderID uuid.UUID) (enums.OrderStatusOrdinal, error) {
	var highest int
	err := r.db.WithContext(ctx).
		Model(&models.OrderStatus{}).
		Where("order_id = ?", orderID).
		Select("COALESCE(MAX(status), 0)").
		Scan(&highest).Error
	return enums.OrderStatusOrdinal(highest), err
}

// SetOrderStatus writes the denormalized status column.
func (r *Repository) SetOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatusOrdinal) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status).Error
}
