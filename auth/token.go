package auth

import (
	"errors"
	"time"

	"quickbite-api/models"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by every bearer token. RestaurantID is present only for
// restaurant owners who already own a restaurant.
type Claims struct {
	UserID       uint        `json:"user_id"`
	Email        string      `json:"email"`
	Role         models.Role `json:"role"`
	RestaurantID *uint       `json:"restaurant_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and validates signed bearer tokens.
type TokenIssuer struct {
	secret []byte
	expiry time.Duration
}

func NewTokenIssuer(secret string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), expiry: expiry}
}

// Issue creates a signed token for a user, optionally binding the owned
// restaurant's id into the claims.
func (i *TokenIssuer) Issue(user *models.User, restaurantID *uint) (string, error) {
	claims := Claims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		RestaurantID: restaurantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(i.expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Parse validates a token string and returns its claims.
func (i *TokenIssuer) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
