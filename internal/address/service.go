package address

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cashya/shoppy-backend/pkg/db/models"
	"github.com/cashya/shoppy-backend/pkg/enums"
	pkgerrors "github.com/cashya/shoppy-backend/pkg/errors"
	"github.com/cashya/shoppy-backend/pkg/logger"
	"github.com/cashya/shoppy-backend/pkg/phone"
)

// Service exposes address book management scoped to a user. The selected
// address is what checkout snapshots, so selection changes also repoint the
// user's cart.
type Service interface {
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]DTO, error)
	GetAddress(ctx context.Context, userID, addressID uuid.UUID) (*DTO, error)
	CreateAddress(ctx context.Context, userID uuid.UUID, input Input) (*DTO, error)
	UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, input Input) (*DTO, error)
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error
}

// Input holds the validated address payload.
type Input struct {
	Name                 string
	Address              string
	City                 string
	State                string
	Pincode              string
	Landmark             string
	PhoneNumber          string
	AlternatePhoneNumber string
	Nickname             string
	Selected             bool
}

// DTO is the address payload returned to clients.
type DTO struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	Address              string    `json:"address"`
	City                 string    `json:"city"`
	State                string    `json:"state"`
	Pincode              string    `json:"pincode"`
	Landmark             string    `json:"landmark,omitempty"`
	PhoneNumber          string    `json:"phone_number"`
	AlternatePhoneNumber string    `json:"alternate_phone_number,omitempty"`
	Nickname             string    `json:"nickname,omitempty"`
	Selected             bool      `json:"selected"`
	CreatedAt            time.Time `json:"created_at"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo *Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService constructs an address service instance.
func NewService(repo *Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) ListAddresses(ctx context.Context, userID uuid.UUID) ([]DTO, error) {
	addresses, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing addresses")
	}
	out := make([]DTO, 0, len(addresses))
	for _, a := range addresses {
		out = append(out, toDTO(a))
	}
	return out, nil
}

func (s *service) GetAddress(ctx context.Context, userID, addressID uuid.UUID) (*DTO, error) {
	address, err := s.repo.FindByIDForUser(ctx, addressID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading address")
	}
	dto := toDTO(*address)
	return &dto, nil
}

func (s *service) CreateAddress(ctx context.Context, userID uuid.UUID, input Input) (*DTO, error) {
	normalized, err := validateInput(&input)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting addresses")
	}
	// The first address becomes the default.
	selected := input.Selected || count == 0

	address := &models.Address{
		UserID:               userID,
		Name:                 input.Name,
		Address:              input.Address,
		City:                 input.City,
		State:                input.State,
		Pincode:              input.Pincode,
		Landmark:             input.Landmark,
		PhoneNumber:          normalized.phone,
		AlternatePhoneNumber: normalized.alternate,
		Nickname:             input.Nickname,
		Selected:             selected,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Create(ctx, address); err != nil {
			return err
		}
		if selected {
			return s.promote(ctx, tx, userID, address.ID)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating address")
	}

	dto := toDTO(*address)
	return &dto, nil
}

func (s *service) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, input Input) (*DTO, error) {
	normalized, err := validateInput(&input)
	if err != nil {
		return nil, err
	}

	address, err := s.repo.FindByIDForUser(ctx, addressID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading address")
	}

	wasSelected := address.Selected
	address.Name = input.Name
	address.Address = input.Address
	address.City = input.City
	address.State = input.State
	address.Pincode = input.Pincode
	address.Landmark = input.Landmark
	address.PhoneNumber = normalized.phone
	address.AlternatePhoneNumber = normalized.alternate
	address.Nickname = input.Nickname
	address.Selected = input.Selected

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Save(ctx, address); err != nil {
			return err
		}
		switch {
		case input.Selected:
			return s.promote(ctx, tx, userID, address.ID)
		case wasSelected && !input.Selected:
			// Deselecting the default leaves the cart with no address.
			return s.unpoint(ctx, tx, userID, address.ID)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating address")
	}

	dto := toDTO(*address)
	return &dto, nil
}

func (s *service) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := s.unpoint(ctx, tx, userID, addressID); err != nil {
			return err
		}
		removed, err := txRepo.Delete(ctx, addressID, userID)
		if err != nil {
			return err
		}
		if removed == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting address")
	}
	return nil
}

// promote makes the address the user's only selected one and points the cart
// at it. The cart is lazily created, so selecting an address before the first
// cart fetch still has to attach it.
func (s *service) promote(ctx context.Context, tx *gorm.DB, userID, addressID uuid.UUID) error {
	if err := s.repo.WithTx(tx).ClearSelected(ctx, userID, addressID); err != nil {
		return err
	}
	res := tx.WithContext(ctx).
		Model(&models.Cart{}).
		Where("user_id = ?", userID).
		Update("address_id", addressID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return tx.WithContext(ctx).Create(&models.Cart{
			UserID:      userID,
			AddressID:   &addressID,
			PaymentMode: enums.PaymentModeCOD,
		}).Error
	}
	return nil
}

// unpoint clears the cart's address reference when it targets addressID.
func (s *service) unpoint(ctx context.Context, tx *gorm.DB, userID, addressID uuid.UUID) error {
	return tx.WithContext(ctx).
		Model(&models.Cart{}).
		Where("user_id = ? AND address_id = ?", userID, addressID).
		Update("address_id", nil).Error
}

type normalizedPhones struct {
	phone     string
	alternate string
}

func validateInput(input *Input) (normalizedPhones, error) {
	var out normalizedPhones
	if input.Name == "" || input.Address == "" || input.City == "" || input.State == "" || input.Pincode == "" {
		return out, pkgerrors.New(pkgerrors.CodeValidation, "name, address, city, state and pincode are required")
	}

	number, err := phone.Normalize(input.PhoneNumber)
	if err != nil {
		return out, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid phone number")
	}
	out.phone = number

	if input.AlternatePhoneNumber != "" {
		alternate, err := phone.Normalize(input.AlternatePhoneNumber)
		if err != nil {
			return out, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid alternate phone number")
		}
		out.alternate = alternate
	}
	return out, nil
}

func toDTO(a models.Address) DTO {
	return DTO{
		ID:                   a.ID,
		Name:                 a.Name,
		Address:              a.Address,
		City:                 a.City,
		State:                a.State,
		Pincode:              a.Pincode,
		Landmark:             a.Landmark,
		PhoneNumber:          a.PhoneNumber,
		AlternatePhoneNumber: a.AlternatePhoneNumber,
		Nickname:             a.Nickname,
		Selected:             a.Selected,
		CreatedAt:            a.CreatedAt,
	}
}
