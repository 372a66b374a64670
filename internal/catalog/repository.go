package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cashya/shoppy-backend/pkg/db/models"
	"github.com/cashya/shoppy-backend/pkg/pagination"
)

// Orderings accepted by the product list endpoint. A leading '-' flips the
// direction, mirroring common query-string conventions.
var allowedOrderings = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

// ErrUnsupportedOrdering is returned for ordering fields outside the whitelist.
var ErrUnsupportedOrdering = errors.New("unsupported ordering")

// ListParams filters and paginates the product listing.
type ListParams struct {
	Search     string
	Ordering   string
	CategoryID *uuid.UUID
	Page       pagination.Params
}

// Repository wires together catalog persistence helpers.
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

// ListCategories returns all categories ordered by name with images preloaded.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Preload("Image").
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// CountProductsByCategory returns available-product counts keyed by category.
func (r *Repository) CountProductsByCategory(ctx context.Context) (map[uuid.UUID]int64, error) {
	type row struct {
		CategoryID uuid.UUID
		Count      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("category_id, COUNT(*) AS count").
		Where("available = ?", true).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		counts[r.CategoryID] = r.Count
	}
	return counts, nil
}

// ListProducts returns one page of available products plus the total count.
func (r *Repository) ListProducts(ctx context.Context, params ListParams) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("available = ?", true)

	if search := strings.TrimSpace(params.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}
	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, err := resolveOrdering(params.Ordering)
	if err != nil {
		return nil, 0, err
	}

	page := params.Page.Normalize()
	var products []models.Product
	err = query.
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Images.Image").
		Order(order).
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// FindProductByID loads one product with variants and images preloaded.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Images.Image").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindVariantByID loads the variant with its product.
func (r *Repository) FindVariantByID(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Preload("Product").
		First(&variant, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// UpdateVariant persists the provided column updates on the variant row.
func (r *Repository) UpdateVariant(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// DeleteCartItemsByVariant removes every cart line holding the variant. Runs
// inside the same transaction as the availability flip so shoppers never keep
// a dead line in their cart.
func (r *Repository) DeleteCartItemsByVariant(ctx context.Context, variantID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("variant_id = ?", variantID).
		Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

func resolveOrdering(ordering string) (string, error) {
	ordering = strings.TrimSpace(ordering)
	if ordering == "" {
		return "created_at DESC", nil
	}
	desc := strings.HasPrefix(ordering, "-")
	field := strings.TrimPrefix(ordering, "-")
	column, ok := allowedOrderings[field]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnsupportedOrdering, ordering)
	}
	if desc {
		return column + " DESC", nil
	}
	return column + " ASC", nil
}
