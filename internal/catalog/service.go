package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cashya/shoppy-backend/pkg/config"
	pkgerrors "github.com/cashya/shoppy-backend/pkg/errors"
	"github.com/cashya/shoppy-backend/pkg/logger"
	"github.com/cashya/shoppy-backend/pkg/pagination"
)

// Service exposes catalog browsing plus the admin variant write path.
type Service interface {
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	UpdateVariant(ctx context.Context, variantID uuid.UUID, input UpdateVariantInput) (*VariantDTO, error)
}

// ListProductsInput holds the validated product listing query.
type ListProductsInput struct {
	Search     string
	Ordering   string
	CategoryID *uuid.UUID
	Page       pagination.Params
}

// ProductListResult is one page of products with the total row count.
type ProductListResult struct {
	Count    int64
	Page     int
	PageSize int
	Results  []ProductDTO
}

// UpdateVariantInput holds optional mutation values for a variant.
type UpdateVariantInput struct {
	Available *bool
	Price     *decimal.Decimal
	MRP       *decimal.Decimal
	Stock     *int
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo  *Repository
	tx    txRunner
	media config.MediaConfig
	logg  *logger.Logger
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, tx txRunner, media config.MediaConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, media: media, logg: logg}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing categories")
	}
	counts, err := s.repo.CountProductsByCategory(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting category products")
	}

	out := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		dto := CategoryDTO{
			ID:           c.ID,
			Name:         c.Name,
			ProductCount: counts[c.ID],
		}
		if c.Image != nil {
			url := ImageURL(s.media.BaseURL, c.Image.Path)
			dto.ImageURL = &url
		}
		out = append(out, dto)
	}
	return out, nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	params := ListParams{
		Search:     input.Search,
		Ordering:   input.Ordering,
		CategoryID: input.CategoryID,
		Page:       input.Page,
	}

	products, total, err := s.repo.ListProducts(ctx, params)
	if err != nil {
		if errors.Is(err, ErrUnsupportedOrdering) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid ordering")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}

	page := input.Page.Normalize()
	return &ProductListResult{
		Count:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
		Results:  toProductDTOs(products, s.media.BaseURL),
	}, nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	dto := ToProductDTO(*product, s.media.BaseURL)
	return &dto, nil
}

func (s *service) UpdateVariant(ctx context.Context, variantID uuid.UUID, input UpdateVariantInput) (*VariantDTO, error) {
	variant, err := s.repo.FindVariantByID(ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading variant")
	}

	updates := map[string]any{}
	price := variant.Price
	mrp := variant.MRP
	if input.Price != nil {
		price = *input.Price
		updates["price"] = *input.Price
	}
	if input.MRP != nil {
		mrp = *input.MRP
		updates["mrp"] = *input.MRP
	}
	if price.GreaterThan(mrp) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot exceed mrp")
	}
	if price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		updates["stock"] = *input.Stock
	}
	madeUnavailable := false
	if input.Available != nil {
		updates["available"] = *input.Available
		madeUnavailable = variant.Available && !*input.Available
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no variant changes provided")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.UpdateVariant(ctx, variantID, updates); err != nil {
			return err
		}
		if madeUnavailable {
			removed, err := txRepo.DeleteCartItemsByVariant(ctx, variantID)
			if err != nil {
				return err
			}
			if removed > 0 {
				s.logg.Info(s.logg.WithFields(ctx, map[string]any{
					"variant_id": variantID.String(),
					"cart_items": removed,
				}), "pruned cart items for unavailable variant")
			}
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating variant")
	}

	updated, err := s.repo.FindVariantByID(ctx, variantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading variant")
	}
	dto := toVariantDTO(*updated)
	return &dto, nil
}
