package models

import "time"

// Role defines the allowed account roles in the system
type Role string

const (
	RoleCustomer        Role = "CUSTOMER"
	RoleRestaurantOwner Role = "RESTAURANT_OWNER"
	RoleDeliveryPartner Role = "DELIVERY_PARTNER"
	RoleAdmin           Role = "ADMIN"
)

// ParseRole rejects anything outside the closed role set so that illegal
// values never make it past the HTTP boundary.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleRestaurantOwner, RoleDeliveryPartner, RoleAdmin:
		return Role(s), nil
	}
	return "", ErrUnknownEnum
}

type User struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	Name         string  `json:"name" gorm:"not null"`
	Email        string  `json:"email" gorm:"uniqueIndex;not null"`
	Phone        *string `json:"phone,omitempty" gorm:"uniqueIndex"`
	PasswordHash string  `json:"-" gorm:"not null"`
	Role         Role    `json:"role" gorm:"not null;default:'CUSTOMER'"`

	Active        bool `json:"active" gorm:"default:true"`
	EmailVerified bool `json:"email_verified" gorm:"default:false"`

	// One-time email verification code; both fields are set together and
	// cleared together on successful consumption.
	EmailOTP          *string    `json:"-"`
	EmailOTPExpiresAt *time.Time `json:"-"`

	// One-time password-reset token, same set/clear discipline as the OTP.
	ResetToken          *string    `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
