package handlers

import (
	"net/http"

	"quickbite-api/middleware"
	"quickbite-api/models"
	"quickbite-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RestaurantHandler exposes the owner-facing catalog and order endpoints.
type RestaurantHandler struct {
	catalog *services.CatalogService
	orders  *services.OrderService
	logger  *zap.Logger
}

func NewRestaurantHandler(catalog *services.CatalogService, orders *services.OrderService, log *zap.Logger) *RestaurantHandler {
	return &RestaurantHandler{catalog: catalog, orders: orders, logger: log}
}

// GetMyRestaurant returns the caller's restaurant with its full menu.
func (h *RestaurantHandler) GetMyRestaurant(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	restaurant, err := h.catalog.GetOwnRestaurant(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Restaurant", restaurant)
}

type UpdateRestaurantRequest struct {
	Name         *string  `json:"name" binding:"omitempty,min=2,max=100"`
	Description  *string  `json:"description" binding:"omitempty,min=10,max=500"`
	Cuisines     []string `json:"cuisines"`
	Address      *string  `json:"address" binding:"omitempty,min=10,max=200"`
	City         *string  `json:"city" binding:"omitempty,min=2,max=50"`
	Pincode      *string  `json:"pincode" binding:"omitempty,min=5,max=10"`
	OpenTime     *string  `json:"open_time" binding:"omitempty,datetime=15:04"`
	CloseTime    *string  `json:"close_time" binding:"omitempty,datetime=15:04"`
	DeliveryFee  *string  `json:"delivery_fee"`
	MinOrder     *string  `json:"min_order"`
	DeliveryTime *string  `json:"delivery_time" binding:"omitempty,min=3,max=50"`
	Active       *bool    `json:"active"`
}

// UpdateRestaurant applies partial updates to the caller's restaurant.
func (h *RestaurantHandler) UpdateRestaurant(c *gin.Context) {
	ownerID := middleware.GetUserID(c)

	var req UpdateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	input := services.UpdateRestaurantInput{
		Name:         req.Name,
		Description:  req.Description,
		Cuisines:     req.Cuisines,
		Address:      req.Address,
		City:         req.City,
		Pincode:      req.Pincode,
		OpenTime:     req.OpenTime,
		CloseTime:    req.CloseTime,
		DeliveryTime: req.DeliveryTime,
		Active:       req.Active,
	}
	if req.DeliveryFee != nil {
		fee, verr := parseMoney(*req.DeliveryFee, "delivery_fee")
		if verr != nil {
			respondError(c, h.logger, verr)
			return
		}
		input.DeliveryFee = &fee
	}
	if req.MinOrder != nil {
		minOrder, verr := parseMoney(*req.MinOrder, "min_order")
		if verr != nil {
			respondError(c, h.logger, verr)
			return
		}
		input.MinOrder = &minOrder
	}

	restaurant, err := h.catalog.UpdateRestaurant(c.Request.Context(), ownerID, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Restaurant updated", restaurant)
}

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=50"`
	Description string `json:"description" binding:"omitempty,max=200"`
	SortOrder   int    `json:"sort_order"`
}

// CreateCategory adds a menu category.
func (h *RestaurantHandler) CreateCategory(c *gin.Context) {
	ownerID := middleware.GetUserID(c)

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	category, err := h.catalog.CreateCategory(c.Request.Context(), ownerID, services.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, "Category created", category)
}

// DeleteCategory removes a menu category the caller owns.
func (h *RestaurantHandler) DeleteCategory(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	categoryID := coerceInt(c.Param("categoryId"), 0)
	if categoryID <= 0 {
		respondError(c, h.logger, services.ValidationError(services.FieldError{Field: "categoryId", Message: "Invalid category id"}))
		return
	}

	if err := h.catalog.DeleteCategory(c.Request.Context(), ownerID, uint(categoryID)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Category deleted", nil)
}

type CreateMenuItemRequest struct {
	CategoryID     uint           `json:"category_id" binding:"required"`
	Name           string         `json:"name" binding:"required,min=2,max=100"`
	Description    string         `json:"description" binding:"omitempty,max=500"`
	Price          string         `json:"price" binding:"required"`
	IsVeg          bool           `json:"is_veg"`
	Customizations models.JSONMap `json:"customizations"`
	ImageURL       string         `json:"image_url"`
}

// AddMenuItem adds an item to one of the caller's categories.
func (h *RestaurantHandler) AddMenuItem(c *gin.Context) {
	ownerID := middleware.GetUserID(c)

	var req CreateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	price, verr := parseMoney(req.Price, "price")
	if verr != nil {
		respondError(c, h.logger, verr)
		return
	}

	item, err := h.catalog.CreateMenuItem(c.Request.Context(), ownerID, services.MenuItemInput{
		CategoryID:     req.CategoryID,
		Name:           req.Name,
		Description:    req.Description,
		Price:          price,
		IsVeg:          req.IsVeg,
		Customizations: req.Customizations,
		ImageURL:       req.ImageURL,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, "Menu item added", item)
}

type UpdateMenuItemRequest struct {
	Name           *string        `json:"name" binding:"omitempty,min=2,max=100"`
	Description    *string        `json:"description" binding:"omitempty,max=500"`
	Price          *string        `json:"price"`
	IsVeg          *bool          `json:"is_veg"`
	Customizations models.JSONMap `json:"customizations"`
	Available      *bool          `json:"available"`
	ImageURL       *string        `json:"image_url"`
}

// UpdateMenuItem modifies an item the caller owns.
func (h *RestaurantHandler) UpdateMenuItem(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	itemID := coerceInt(c.Param("itemId"), 0)
	if itemID <= 0 {
		respondError(c, h.logger, services.ValidationError(services.FieldError{Field: "itemId", Message: "Invalid item id"}))
		return
	}

	var req UpdateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	input := services.UpdateMenuItemInput{
		Name:           req.Name,
		Description:    req.Description,
		IsVeg:          req.IsVeg,
		Customizations: req.Customizations,
		Available:      req.Available,
		ImageURL:       req.ImageURL,
	}
	if req.Price != nil {
		price, verr := parseMoney(*req.Price, "price")
		if verr != nil {
			respondError(c, h.logger, verr)
			return
		}
		input.Price = &price
	}

	item, err := h.catalog.UpdateMenuItem(c.Request.Context(), ownerID, uint(itemID), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Menu item updated", item)
}

// DeleteMenuItem removes an item the caller owns.
func (h *RestaurantHandler) DeleteMenuItem(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	itemID := coerceInt(c.Param("itemId"), 0)
	if itemID <= 0 {
		respondError(c, h.logger, services.ValidationError(services.FieldError{Field: "itemId", Message: "Invalid item id"}))
		return
	}

	if err := h.catalog.DeleteMenuItem(c.Request.Context(), ownerID, uint(itemID)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Menu item deleted", nil)
}

// GetRestaurantOrders lists the caller's restaurant orders with a per-status
// summary for the dashboard.
func (h *RestaurantHandler) GetRestaurantOrders(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	result, err := h.orders.GetRestaurantOrders(c.Request.Context(), ownerID, c.Query("status"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Orders", result)
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus transitions one of the caller's restaurant's orders.
func (h *RestaurantHandler) UpdateOrderStatus(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	orderID := coerceInt(c.Param("id"), 0)
	if orderID <= 0 {
		respondError(c, h.logger, services.ValidationError(services.FieldError{Field: "id", Message: "Invalid order id"}))
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	status, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		respondError(c, h.logger, services.ValidationError(services.FieldError{Field: "status", Message: "Unknown order status"}))
		return
	}

	order, err := h.orders.UpdateOrderStatus(c.Request.Context(), uint(orderID), ownerID, status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Order status updated", order)
}
