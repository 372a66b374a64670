// Package checkout turns the user's cart into an immutable order. The whole
// finalization runs in one transaction so a failed coupon redemption or item
// write never leaves a half-placed order behind.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cashya/shoppy-backend/internal/cart"
	"github.com/cashya/shoppy-backend/internal/coupon"
	"github.com/cashya/shoppy-backend/internal/orders"
	"github.com/cashya/shoppy-backend/pkg/db/models"
	"github.com/cashya/shoppy-backend/pkg/enums"
	pkgerrors "github.com/cashya/shoppy-backend/pkg/errors"
	"github.com/cashya/shoppy-backend/pkg/logger"
	"github.com/cashya/shoppy-backend/pkg/money"
)

// Service finalizes carts into orders.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID) (*orders.DTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

var errCouponExhausted = errors.New("coupon quantity exhausted")

type service struct {
	cartRepo   *cart.Repository
	couponRepo *coupon.Repository
	orderRepo  *orders.Repository
	tx         txRunner
	logg       *logger.Logger
}

// NewService constructs a checkout service instance.
func NewService(cartRepo *cart.Repository, couponRepo *coupon.Repository, orderRepo *orders.Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if couponRepo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		cartRepo:   cartRepo,
		couponRepo: couponRepo,
		orderRepo:  orderRepo,
		tx:         tx,
		logg:       logg,
	}, nil
}

func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID) (*orders.DTO, error) {
	var orderID uuid.UUID

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)

		loaded, err := cartRepo.FindByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return err
		}

		// Items that went unavailable since the cart was last viewed never
		// make it into the order.
		if _, err := cartRepo.PruneUnavailableItems(ctx, loaded.ID); err != nil {
			return err
		}
		loaded, err = cartRepo.FindByUser(ctx, userID)
		if err != nil {
			return err
		}

		if len(loaded.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		if loaded.AddressID == nil || loaded.Address == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "address is required for placing order")
		}

		order, err := buildOrder(loaded)
		if err != nil {
			return err
		}
		if err := s.orderRepo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		orderID = order.ID

		// The cart row survives so the coupon and address references carry
		// into the next order.
		if err := cartRepo.DeleteItems(ctx, loaded.ID); err != nil {
			return err
		}

		if loaded.CouponID != nil {
			redeemed, err := s.couponRepo.WithTx(tx).RedeemOne(ctx, *loaded.CouponID)
			if err != nil {
				return err
			}
			if !redeemed {
				return errCouponExhausted
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errCouponExhausted) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon is exhausted")
		}
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "placing order")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id": orderID.String(),
	}), "order placed")

	placed, err := s.orderRepo.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading placed order")
	}
	dto := orders.ToDTO(*placed)
	return &dto, nil
}

// buildOrder copies the cart into an order: address fields snapshotted,
// product and variant names frozen on each line, total accumulated from the
// rounded line totals.
func buildOrder(c *models.Cart) (*models.Order, error) {
	address := c.Address

	order := &models.Order{
		UserID:      c.UserID,
		CouponID:    c.CouponID,
		PaymentMode: c.PaymentMode,

		Name:                 address.Name,
		Address:              address.Address,
		City:                 address.City,
		State:                address.State,
		Pincode:              address.Pincode,
		Landmark:             address.Landmark,
		PhoneNumber:          address.PhoneNumber,
		AlternatePhoneNumber: address.AlternatePhoneNumber,

		Status:   enums.OrderStatusPending,
		Statuses: []models.OrderStatus{{Status: enums.OrderStatusPending}},
	}

	total := decimal.Zero
	for _, item := range c.Items {
		variant := item.Variant
		if variant == nil || variant.Product == nil {
			return nil, fmt.Errorf("cart item %s has no loaded variant", item.ID)
		}
		line := models.OrderItem{
			VariantID:   variant.ID,
			ProductName: variant.Product.Name,
			VariantName: variant.Name,
			Quantity:    item.Quantity,
			MRP:         variant.MRP,
			Price:       variant.Price,
		}
		total = total.Add(money.Round2(line.Total()))
		order.Items = append(order.Items, line)
	}
	order.Total = money.Round2(total)

	return order, nil
}
