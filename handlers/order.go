package handlers

import (
	"net/http"
	"strconv"

	"quickbite-api/middleware"
	"quickbite-api/models"
	"quickbite-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OrderHandler exposes the customer-facing order endpoints.
type OrderHandler struct {
	orders *services.OrderService
	logger *zap.Logger
}

func NewOrderHandler(orders *services.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: log}
}

type CreateOrderRequest struct {
	RestaurantID  uint   `json:"restaurant_id" binding:"required"`
	AddressID     uint   `json:"address_id" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
	Instructions  string `json:"instructions"`
	Items         []struct {
		MenuItemID     uint           `json:"menu_item_id" binding:"required"`
		Quantity       int            `json:"quantity" binding:"required,min=1"`
		Customizations models.JSONMap `json:"customizations"`
	} `json:"items" binding:"required,min=1,dive"`
}

// PlaceOrder creates a new order for the logged-in customer.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	customerID := middleware.GetUserID(c)

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	items := make([]services.OrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, services.OrderItemInput{
			MenuItemID:     it.MenuItemID,
			Quantity:       it.Quantity,
			Customizations: it.Customizations,
		})
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), customerID, services.CreateOrderInput{
		RestaurantID:  req.RestaurantID,
		AddressID:     req.AddressID,
		Items:         items,
		PaymentMethod: req.PaymentMethod,
		Instructions:  req.Instructions,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, "Order placed", order)
}

// GetMyOrders lists the caller's orders, newest first. Junk limit/offset
// values degrade to defaults instead of failing the query.
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	customerID := middleware.GetUserID(c)

	limit := coerceInt(c.Query("limit"), services.DefaultOrderPageSize)
	offset := coerceInt(c.Query("offset"), 0)

	orders, err := h.orders.GetUserOrders(c.Request.Context(), customerID, c.Query("status"), limit, offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Orders", gin.H{"count": len(orders), "orders": orders})
}

// GetOrder returns one order to its customer or the restaurant's owner.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	callerID := middleware.GetUserID(c)
	orderID := coerceInt(c.Param("id"), 0)
	if orderID <= 0 {
		respondError(c, h.logger, services.ValidationError(services.FieldError{Field: "id", Message: "Invalid order id"}))
		return
	}

	order, err := h.orders.GetOrderByID(c.Request.Context(), uint(orderID), callerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Order", order)
}

// coerceInt parses an integer query value, falling back to a default on
// junk or negative input.
func coerceInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
