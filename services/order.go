package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"quickbite-api/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// taxRate is the fixed 5% tax applied to the order subtotal.
var taxRate = decimal.RequireFromString("0.05")

const DefaultOrderPageSize = 20

// OrderService validates carts against live catalog data, computes totals
// and drives orders through the status lifecycle.
type OrderService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewOrderService(db *gorm.DB, log *zap.Logger) *OrderService {
	return &OrderService{db: db, logger: log.Named("orders")}
}

type OrderItemInput struct {
	MenuItemID     uint
	Quantity       int
	Customizations models.JSONMap
}

type CreateOrderInput struct {
	RestaurantID  uint
	AddressID     uint
	Items         []OrderItemInput
	PaymentMethod string
	Instructions  string
}

// CreateOrder builds and persists an order with its line items as one atomic
// unit. Unit prices are snapshotted from the catalog at order time and never
// recomputed afterwards.
func (s *OrderService) CreateOrder(ctx context.Context, customerID uint, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, ValidationError(FieldError{Field: "items", Message: "Order must contain at least one item"})
	}

	var restaurant models.Restaurant
	if err := s.db.WithContext(ctx).First(&restaurant, in.RestaurantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindInvalidReference, "Restaurant does not exist")
		}
		return nil, s.internal("load restaurant", err)
	}

	// Ownership check keeps one user from ordering to another's address.
	var address models.Address
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", in.AddressID, customerID).
		First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindInvalidReference, "Address does not exist or does not belong to you")
		}
		return nil, s.internal("load address", err)
	}

	subtotal := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(in.Items))
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return nil, ValidationError(FieldError{Field: "items", Message: "Quantity must be at least 1"})
		}
		var menuItem models.MenuItem
		if err := s.db.WithContext(ctx).First(&menuItem, item.MenuItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, newError(KindInvalidReference, fmt.Sprintf("Menu item %d does not exist", item.MenuItemID))
			}
			return nil, s.internal("load menu item", err)
		}

		lineTotal := menuItem.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		orderItems = append(orderItems, models.OrderItem{
			MenuItemID:     menuItem.ID,
			Quantity:       item.Quantity,
			UnitPrice:      menuItem.Price,
			Customizations: item.Customizations,
		})
	}

	tax := subtotal.Mul(taxRate).Round(2)
	total := subtotal.Add(restaurant.DeliveryFee).Add(tax)

	order := models.Order{
		OrderNumber:   generateOrderNumber(),
		CustomerID:    customerID,
		RestaurantID:  restaurant.ID,
		AddressID:     address.ID,
		Subtotal:      subtotal,
		DeliveryFee:   restaurant.DeliveryFee,
		Tax:           tax,
		Total:         total,
		PaymentMethod: in.PaymentMethod,
		Instructions:  in.Instructions,
		EstimatedTime: restaurant.DeliveryTime,
		Status:        models.StatusPending,
		Items:         orderItems,
	}

	// Order and line items persist together or not at all.
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&order).Error
	}); err != nil {
		return nil, s.internal("create order", err)
	}

	s.logger.Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.Uint("customer_id", customerID),
		zap.String("total", order.Total.StringFixed(2)))
	return &order, nil
}

// GetUserOrders returns the caller's own orders, newest first. Negative
// limit/offset fall back to defaults rather than breaking the query.
func (s *OrderService) GetUserOrders(ctx context.Context, userID uint, status string, limit, offset int) ([]models.Order, error) {
	if limit <= 0 {
		limit = DefaultOrderPageSize
	}
	if offset < 0 {
		offset = 0
	}

	query := s.db.WithContext(ctx).
		Preload("Items").Preload("Restaurant").
		Where("customer_id = ?", userID)
	if status != "" {
		parsed, err := models.ParseOrderStatus(status)
		if err != nil {
			return nil, ValidationError(FieldError{Field: "status", Message: "Unknown order status"})
		}
		query = query.Where("status = ?", parsed)
	}

	var orders []models.Order
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		return nil, s.internal("list orders", err)
	}
	return orders, nil
}

// RestaurantOrders is the owner-facing order list with per-status counts.
type RestaurantOrders struct {
	Restaurant *models.Restaurant `json:"restaurant"`
	Summary    map[string]int     `json:"summary"`
	Orders     []models.Order     `json:"orders"`
}

// GetRestaurantOrders returns all orders for the caller's restaurant.
func (s *OrderService) GetRestaurantOrders(ctx context.Context, ownerID uint, status string) (*RestaurantOrders, error) {
	var restaurant models.Restaurant
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&restaurant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "No restaurant found for your account")
		}
		return nil, s.internal("load restaurant", err)
	}

	query := s.db.WithContext(ctx).
		Preload("Items").Preload("Customer").
		Where("restaurant_id = ?", restaurant.ID)
	if status != "" {
		parsed, err := models.ParseOrderStatus(status)
		if err != nil {
			return nil, ValidationError(FieldError{Field: "status", Message: "Unknown order status"})
		}
		query = query.Where("status = ?", parsed)
	}

	var orders []models.Order
	if err := query.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, s.internal("list restaurant orders", err)
	}

	summary := map[string]int{}
	for _, o := range orders {
		summary[string(o.Status)]++
	}
	return &RestaurantOrders{Restaurant: &restaurant, Summary: summary, Orders: orders}, nil
}

// GetOrderByID returns an order to its customer or to the owner of its
// restaurant; no one else may view it.
func (s *OrderService) GetOrderByID(ctx context.Context, orderID, callerID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).
		Preload("Items.MenuItem").Preload("Restaurant").Preload("Address").
		First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "Order not found")
		}
		return nil, s.internal("load order", err)
	}

	if order.CustomerID != callerID && order.Restaurant.OwnerID != callerID {
		return nil, newError(KindForbidden, "You are not allowed to view this order")
	}
	return &order, nil
}

// UpdateOrderStatus moves an order to a new status. Only the owning
// restaurant's owner may transition. Any status from the closed set is
// accepted from any current status; entering a lifecycle status stamps its
// timestamp, re-stamping on repeated entry.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID, ownerID uint, status models.OrderStatus) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Restaurant").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "Order not found")
		}
		return nil, s.internal("load order", err)
	}

	if order.Restaurant.OwnerID != ownerID {
		return nil, newError(KindForbidden, "This order does not belong to your restaurant")
	}

	now := time.Now()
	updates := map[string]interface{}{"status": status}
	switch status {
	case models.StatusConfirmed:
		updates["confirmed_at"] = now
	case models.StatusPreparing:
		updates["prepared_at"] = now
	case models.StatusOutForDelivery:
		updates["picked_up_at"] = now
	case models.StatusDelivered:
		updates["delivered_at"] = now
	case models.StatusCancelled:
		updates["cancelled_at"] = now
	}
	if err := s.db.WithContext(ctx).Model(&order).Updates(updates).Error; err != nil {
		return nil, s.internal("update order status", err)
	}

	order.Status = status
	order.StampStatus(status, now)
	s.logger.Info("order status updated",
		zap.String("order_number", order.OrderNumber),
		zap.String("status", string(status)))
	return &order, nil
}

func (s *OrderService) internal(op string, err error) *Error {
	s.logger.Error(op, zap.Error(err))
	return newError(KindInternal, "Something went wrong")
}

// generateOrderNumber derives a human-readable, time-prefixed number with a
// random suffix. Collisions are statistically negligible; the unique column
// makes one fail loudly rather than corrupt data.
func generateOrderNumber() string {
	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		panic(err)
	}
	return fmt.Sprintf("QB-%s-%s", time.Now().Format("20060102150405"), strings.ToUpper(hex.EncodeToString(suffix)))
}
