package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cashya/shoppy-backend/internal/coupon"
	"github.com/cashya/shoppy-backend/internal/pricing"
	"github.com/cashya/shoppy-backend/pkg/db/models"
	"github.com/cashya/shoppy-backend/pkg/enums"
	pkgerrors "github.com/cashya/shoppy-backend/pkg/errors"
	"github.com/cashya/shoppy-backend/pkg/logger"
)

// Service exposes the per-user cart aggregate.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*DTO, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*DTO, error)
	UpdateItem(ctx context.Context, userID, variantID uuid.UUID, quantity int) (*DTO, error)
	RemoveItem(ctx context.Context, userID, variantID uuid.UUID) (*DTO, error)
	ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*DTO, error)
	GetCoupon(ctx context.Context, userID uuid.UUID) (*CouponDTO, error)
	ClearCoupon(ctx context.Context, userID uuid.UUID) (*DTO, error)
	SetPaymentMode(ctx context.Context, userID uuid.UUID, mode enums.PaymentMode) (*DTO, error)
}

// AddItemInput holds the validated payload to add a cart line.
type AddItemInput struct {
	VariantID uuid.UUID
	Quantity  int
}

type variantLoader interface {
	FindVariantByID(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
}

type couponFinder interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
}

type service struct {
	repo     *Repository
	variants variantLoader
	coupons  couponFinder
	engine   *pricing.Engine
	logg     *logger.Logger
}

// NewService constructs a cart service instance.
func NewService(repo *Repository, variants variantLoader, coupons couponFinder, engine *pricing.Engine, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if variants == nil {
		return nil, fmt.Errorf("variant loader required")
	}
	if coupons == nil {
		return nil, fmt.Errorf("coupon finder required")
	}
	if engine == nil {
		return nil, fmt.Errorf("pricing engine required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, variants: variants, coupons: coupons, engine: engine, logg: logg}, nil
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*DTO, error) {
	return s.loadCart(ctx, userID)
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*DTO, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	variant, err := s.variants.FindVariantByID(ctx, input.VariantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading variant")
	}
	if !variant.Available || (variant.Product != nil && !variant.Product.Available) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant is not available")
	}

	cart, err := s.repo.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	if _, err := s.repo.FindItem(ctx, cart.ID, input.VariantID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant already in cart")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking cart line")
	}

	item := &models.CartItem{
		CartID:    cart.ID,
		VariantID: input.VariantID,
		Quantity:  input.Quantity,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adding cart line")
	}

	return s.loadCart(ctx, userID)
}

func (s *service) UpdateItem(ctx context.Context, userID, variantID uuid.UUID, quantity int) (*DTO, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	cart, err := s.repo.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	item, err := s.repo.FindItem(ctx, cart.ID, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not in cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart line")
	}

	if err := s.repo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart line")
	}

	return s.loadCart(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID, variantID uuid.UUID) (*DTO, error) {
	cart, err := s.repo.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	removed, err := s.repo.DeleteItem(ctx, cart.ID, variantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing cart line")
	}
	if removed == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not in cart")
	}

	return s.loadCart(ctx, userID)
}

func (s *service) ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*DTO, error) {
	c, err := s.coupons.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading coupon")
	}

	cart, err := s.repo.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	if _, err := coupon.Validate(Subtotal(cart.Items), c, time.Now()); err != nil {
		return nil, err
	}

	if err := s.repo.SetCoupon(ctx, cart.ID, &c.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "applying coupon")
	}

	return s.loadCart(ctx, userID)
}

func (s *service) GetCoupon(ctx context.Context, userID uuid.UUID) (*CouponDTO, error) {
	cart, err := s.repo.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	if cart.Coupon == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no coupon applied")
	}
	return &CouponDTO{
		Code:       cart.Coupon.Code,
		CouponType: cart.Coupon.CouponType,
		Discount:   cart.Coupon.Discount,
	}, nil
}

func (s *service) ClearCoupon(ctx context.Context, userID uuid.UUID) (*DTO, error) {
	cart, err := s.repo.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	if err := s.repo.SetCoupon(ctx, cart.ID, nil); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing coupon")
	}
	return s.loadCart(ctx, userID)
}

func (s *service) SetPaymentMode(ctx context.Context, userID uuid.UUID, mode enums.PaymentMode) (*DTO, error) {
	if !mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment mode")
	}
	cart, err := s.repo.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	if err := s.repo.SetPaymentMode(ctx, cart.ID, mode); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "setting payment mode")
	}
	return s.loadCart(ctx, userID)
}

// loadCart fetches the cart, prunes dead lines and prices what remains.
func (s *service) loadCart(ctx context.Context, userID uuid.UUID) (*DTO, error) {
	cart, err := s.repo.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	pruned, err := s.repo.PruneUnavailableItems(ctx, cart.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "pruning cart")
	}
	if pruned > 0 {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"cart_id": cart.ID.String(),
			"removed": pruned,
		}), "pruned unavailable cart lines")
		cart, err = s.repo.FindByUser(ctx, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading cart")
		}
	}

	breakdown := s.engine.Quote(Subtotal(cart.Items), cart.Coupon, time.Now())
	return toDTO(cart, breakdown), nil
}
