package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents all possible states of a food delivery order
type OrderStatus string

const (
	StatusPending        OrderStatus = "PENDING"
	StatusConfirmed      OrderStatus = "CONFIRMED"
	StatusPreparing      OrderStatus = "PREPARING"
	StatusReadyForPickup OrderStatus = "READY_FOR_PICKUP"
	StatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
)

// AllOrderStatuses lists the closed status set in lifecycle order.
var AllOrderStatuses = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusReadyForPickup,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCancelled,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range AllOrderStatuses {
		if OrderStatus(s) == st {
			return st, nil
		}
	}
	return "", ErrUnknownEnum
}

type Order struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	OrderNumber  string     `json:"order_number" gorm:"uniqueIndex;not null"`
	CustomerID   uint       `json:"customer_id" gorm:"not null;index"`
	Customer     User       `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	RestaurantID uint       `json:"restaurant_id" gorm:"not null;index"`
	Restaurant   Restaurant `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	AddressID    uint       `json:"address_id" gorm:"not null"`
	Address      Address    `json:"address,omitempty" gorm:"foreignKey:AddressID"`

	Subtotal    decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2)"`
	DeliveryFee decimal.Decimal `json:"delivery_fee" gorm:"type:decimal(10,2)"`
	Tax         decimal.Decimal `json:"tax" gorm:"type:decimal(10,2)"`
	Total       decimal.Decimal `json:"total" gorm:"type:decimal(10,2)"`

	PaymentMethod string `json:"payment_method"`
	Instructions  string `json:"instructions"`
	EstimatedTime string `json:"estimated_time"`

	Status OrderStatus `json:"status" gorm:"not null;default:'PENDING'"`

	// Lifecycle timestamps, stamped on entry to the matching status.
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	PreparedAt  *time.Time `json:"prepared_at,omitempty"`
	PickedUpAt  *time.Time `json:"picked_up_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	Items     []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID         uint     `json:"id" gorm:"primaryKey"`
	OrderID    uint     `json:"order_id" gorm:"not null;index"`
	MenuItemID uint     `json:"menu_item_id" gorm:"not null"`
	MenuItem   MenuItem `json:"menu_item,omitempty" gorm:"foreignKey:MenuItemID"`
	Quantity   int      `json:"quantity" gorm:"not null"`

	// Price captured at order time; never recomputed from the catalog.
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"`

	Customizations JSONMap `json:"customizations" gorm:"type:text"`
}

// StampStatus records the transition time for statuses that carry a
// lifecycle timestamp. Repeated entry into the same status re-stamps it.
func (o *Order) StampStatus(status OrderStatus, at time.Time) {
	switch status {
	case StatusConfirmed:
		o.ConfirmedAt = &at
	case StatusPreparing:
		o.PreparedAt = &at
	case StatusOutForDelivery:
		o.PickedUpAt = &at
	case StatusDelivered:
		o.DeliveredAt = &at
	case StatusCancelled:
		o.CancelledAt = &at
	}
}
