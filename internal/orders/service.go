package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cashya/shoppy-backend/pkg/db"
	"github.com/cashya/shoppy-backend/pkg/db/models"
	"github.com/cashya/shoppy-backend/pkg/enums"
	pkgerrors "github.com/cashya/shoppy-backend/pkg/errors"
	"github.com/cashya/shoppy-backend/pkg/logger"
	"github.com/cashya/shoppy-backend/pkg/pagination"
)

// Service exposes order history reads for customers and status tracking for
// the admin surface.
type Service interface {
	ListOrders(ctx context.Context, userID uuid.UUID, page pagination.Params) (*ListDTO, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*DTO, error)
	AppendStatus(ctx context.Context, orderID uuid.UUID, ordinal enums.OrderStatusOrdinal) (*DTO, error)
	RemoveStatus(ctx context.Context, orderID, statusID uuid.UUID) (*DTO, error)
}

var errStatusExists = errors.New("order status already present")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo *Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService constructs an order service instance.
func NewService(repo *Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) ListOrders(ctx context.Context, userID uuid.UUID, page pagination.Params) (*ListDTO, error) {
	page = page.Normalize()
	orders, total, err := s.repo.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}

	out := make([]DTO, 0, len(orders))
	for _, order := range orders {
		out = append(out, ToDTO(order))
	}
	return &ListDTO{
		Orders:   out,
		Count:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil
}

func (s *service) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*DTO, error) {
	order, err := s.repo.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	dto := ToDTO(*order)
	return &dto, nil
}

func (s *service) AppendStatus(ctx context.Context, orderID uuid.UUID, ordinal enums.OrderStatusOrdinal) (*DTO, error) {
	if !ordinal.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").
			WithDetails(map[string]any{"statuses": enums.OrderStatusNames()})
	}

	if _, err := s.repo.FindByID(ctx, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		exists, err := txRepo.StatusExists(ctx, orderID, ordinal)
		if err != nil {
			return err
		}
		if exists {
			return errStatusExists
		}
		entry := &models.OrderStatus{OrderID: orderID, Status: ordinal}
		if err := txRepo.CreateStatus(ctx, entry); err != nil {
			return err
		}
		return recomputeStatus(ctx, txRepo, orderID)
	})
	if err != nil {
		// The unique index catches the race the pre-check misses.
		if errors.Is(err, errStatusExists) || db.IsUniqueViolation(err, "idx_order_status") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already has this status")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "appending order status")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id": orderID.String(),
		"status":   ordinal.String(),
	}), "order status appended")

	return s.reload(ctx, orderID)
}

func (s *service) RemoveStatus(ctx context.Context, orderID, statusID uuid.UUID) (*DTO, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		removed, err := txRepo.DeleteStatus(ctx, orderID, statusID)
		if err != nil {
			return err
		}
		if removed == 0 {
			return gorm.ErrRecordNotFound
		}
		return recomputeStatus(ctx, txRepo, orderID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order status not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing order status")
	}

	return s.reload(ctx, orderID)
}

func (s *service) reload(ctx context.Context, orderID uuid.UUID) (*DTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading order")
	}
	dto := ToDTO(*order)
	return &dto, nil
}

// recomputeStatus rewrites the denormalized order status from the history so
// list views never need the join. Runs inside the mutation's transaction.
func recomputeStatus(ctx context.Context, repo *Repository, orderID uuid.UUID) error {
	highest, err := repo.HighestStatus(ctx, orderID)
	if err != nil {
		return err
	}
	return repo.SetOrderStatus(ctx, orderID, highest)
}
