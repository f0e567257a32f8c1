package models

import "time"

// AddressType tags a saved address
type AddressType string

const (
	AddressHome  AddressType = "HOME"
	AddressWork  AddressType = "WORK"
	AddressOther AddressType = "OTHER"
)

func ParseAddressType(s string) (AddressType, error) {
	switch AddressType(s) {
	case AddressHome, AddressWork, AddressOther:
		return AddressType(s), nil
	}
	return "", ErrUnknownEnum
}

type Address struct {
	ID      uint        `json:"id" gorm:"primaryKey"`
	UserID  uint        `json:"user_id" gorm:"not null;index"`
	Type    AddressType `json:"type" gorm:"not null;default:'HOME'"`
	Address string      `json:"address" gorm:"not null"`
	City    string      `json:"city"`
	Pincode string      `json:"pincode"`
	Lat     *float64    `json:"lat,omitempty"`
	Lng     *float64    `json:"lng,omitempty"`

	// At most one address per user carries IsDefault; setting a new default
	// unsets every other one in the same transaction.
	IsDefault bool `json:"is_default" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
