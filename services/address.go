package services

import (
	"context"
	"errors"

	"quickbite-api/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddressService manages a user's saved delivery addresses.
type AddressService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewAddressService(db *gorm.DB, log *zap.Logger) *AddressService {
	return &AddressService{db: db, logger: log.Named("addresses")}
}

type AddressInput struct {
	Type      models.AddressType
	Address   string
	City      string
	Pincode   string
	Lat       *float64
	Lng       *float64
	IsDefault bool
}

// CreateAddress saves a new address. When it is marked default, every other
// default for the user is unset in the same transaction so at most one
// default ever exists.
func (s *AddressService) CreateAddress(ctx context.Context, userID uint, in AddressInput) (*models.Address, error) {
	address := models.Address{
		UserID:    userID,
		Type:      in.Type,
		Address:   in.Address,
		City:      in.City,
		Pincode:   in.Pincode,
		Lat:       in.Lat,
		Lng:       in.Lng,
		IsDefault: in.IsDefault,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.IsDefault {
			if err := tx.Model(&models.Address{}).
				Where("user_id = ?", userID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		return nil, s.internal("create address", err)
	}
	return &address, nil
}

// ListAddresses returns all of the caller's addresses, default first.
func (s *AddressService) ListAddresses(ctx context.Context, userID uint) ([]models.Address, error) {
	var addresses []models.Address
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default desc, created_at desc").
		Find(&addresses).Error; err != nil {
		return nil, s.internal("list addresses", err)
	}
	return addresses, nil
}

// UpdateAddress modifies one of the caller's addresses, holding the
// single-default invariant.
func (s *AddressService) UpdateAddress(ctx context.Context, userID, addressID uint, in AddressInput) (*models.Address, error) {
	var address models.Address
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "Address not found")
		}
		return nil, s.internal("load address", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.IsDefault {
			if err := tx.Model(&models.Address{}).
				Where("user_id = ? AND id <> ?", userID, addressID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Model(&address).Updates(map[string]interface{}{
			"type":       in.Type,
			"address":    in.Address,
			"city":       in.City,
			"pincode":    in.Pincode,
			"lat":        in.Lat,
			"lng":        in.Lng,
			"is_default": in.IsDefault,
		}).Error
	})
	if err != nil {
		return nil, s.internal("update address", err)
	}
	return &address, nil
}

// DeleteAddress removes one of the caller's addresses.
func (s *AddressService) DeleteAddress(ctx context.Context, userID, addressID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		Delete(&models.Address{})
	if result.Error != nil {
		return s.internal("delete address", result.Error)
	}
	if result.RowsAffected == 0 {
		return newError(KindNotFound, "Address not found")
	}
	return nil
}

func (s *AddressService) internal(op string, err error) *Error {
	s.logger.Error(op, zap.Error(err))
	return newError(KindInternal, "Something went wrong")
}
