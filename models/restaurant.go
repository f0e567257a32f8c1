package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Restaurant struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	OwnerID     uint       `json:"owner_id" gorm:"not null;index"`
	Owner       User       `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Name        string     `json:"name" gorm:"not null"`
	Description string     `json:"description"`
	Cuisines    StringList `json:"cuisines" gorm:"type:text"`

	Address string   `json:"address"`
	City    string   `json:"city"`
	Pincode string   `json:"pincode"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`

	OpenTime  string `json:"open_time"`  // 24-hour HH:MM
	CloseTime string `json:"close_time"` // 24-hour HH:MM

	DeliveryFee  decimal.Decimal `json:"delivery_fee" gorm:"type:decimal(10,2)"`
	MinOrder     decimal.Decimal `json:"min_order" gorm:"type:decimal(10,2)"`
	DeliveryTime string          `json:"delivery_time"`

	ImageURL  string `json:"image_url"`
	BannerURL string `json:"banner_url"`

	Rating      float64 `json:"rating" gorm:"default:0"`
	RatingCount int     `json:"rating_count" gorm:"default:0"`
	Active      bool    `json:"active" gorm:"default:true"`

	Categories []MenuCategory `json:"categories,omitempty" gorm:"foreignKey:RestaurantID"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type MenuCategory struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	RestaurantID uint   `json:"restaurant_id" gorm:"not null;index"`
	Name         string `json:"name" gorm:"not null"`
	Description  string `json:"description"`
	SortOrder    int    `json:"sort_order" gorm:"default:0"`
	Active       bool   `json:"active" gorm:"default:true"`

	Items     []MenuItem `json:"items,omitempty" gorm:"foreignKey:CategoryID"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type MenuItem struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	CategoryID  uint            `json:"category_id" gorm:"not null;index"`
	Name        string          `json:"name" gorm:"not null"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	IsVeg       bool            `json:"is_veg" gorm:"default:false"`

	// Customization options offered for this item, e.g. "size" → "S,M,L".
	Customizations JSONMap `json:"customizations" gorm:"type:text"`

	Available bool   `json:"available" gorm:"default:true"`
	ImageURL  string `json:"image_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SeededCategoryNames are created for every restaurant at registration,
// in this order.
var SeededCategoryNames = []string{"Appetizers", "Main Course", "Beverages", "Desserts"}
