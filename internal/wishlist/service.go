package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cashya/shoppy-backend/internal/catalog"
	"github.com/cashya/shoppy-backend/pkg/config"
	"github.com/cashya/shoppy-backend/pkg/db/models"
	pkgerrors "github.com/cashya/shoppy-backend/pkg/errors"
	"github.com/cashya/shoppy-backend/pkg/logger"
)

// Service exposes per-user wishlist management.
type Service interface {
	ListItems(ctx context.Context, userID uuid.UUID) ([]ItemDTO, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID) (*ItemDTO, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error
}

// ItemDTO is one wishlist entry with its product payload.
type ItemDTO struct {
	ID      uuid.UUID          `json:"id"`
	Product catalog.ProductDTO `json:"product"`
	AddedAt time.Time          `json:"added_at"`
}

type productFinder interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo     *Repository
	products productFinder
	media    config.MediaConfig
	logg     *logger.Logger
}

// NewService constructs a wishlist service instance.
func NewService(repo *Repository, products productFinder, media config.MediaConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wishlist repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, products: products, media: media, logg: logg}, nil
}

func (s *service) ListItems(ctx context.Context, userID uuid.UUID) ([]ItemDTO, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing wishlist")
	}
	out := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, s.toItemDTO(item))
	}
	return out, nil
}

// AddItem bookmarks the product. Adding a product already on the wishlist is
// a no-op that returns the existing entry.
func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID) (*ItemDTO, error) {
	if existing, err := s.repo.Find(ctx, userID, productID); err == nil {
		dto := s.toItemDTO(*existing)
		return &dto, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading wishlist entry")
	}

	if _, err := s.products.FindProductByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}

	item := &models.WishlistItem{UserID: userID, ProductID: productID}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adding wishlist entry")
	}

	created, err := s.repo.Find(ctx, userID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading wishlist entry")
	}
	dto := s.toItemDTO(*created)
	return &dto, nil
}

func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	removed, err := s.repo.Delete(ctx, userID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing wishlist entry")
	}
	if removed == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "wishlist entry not found")
	}
	return nil
}

func (s *service) toItemDTO(item models.WishlistItem) ItemDTO {
	dto := ItemDTO{ID: item.ID, AddedAt: item.CreatedAt}
	if item.Product != nil {
		dto.Product = catalog.ToProductDTO(*item.Product, s.media.BaseURL)
	}
	return dto
}
