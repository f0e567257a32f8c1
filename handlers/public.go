package handlers

import (
	"net/http"

	"quickbite-api/models"
	"quickbite-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PublicHandler serves the unauthenticated browse surface.
type PublicHandler struct {
	catalog *services.CatalogService
	logger  *zap.Logger
}

func NewPublicHandler(catalog *services.CatalogService, log *zap.Logger) *PublicHandler {
	return &PublicHandler{catalog: catalog, logger: log}
}

// ListRestaurants returns active restaurants, best rated first.
func (h *PublicHandler) ListRestaurants(c *gin.Context) {
	restaurants, err := h.catalog.ListRestaurants(c.Request.Context(), services.RestaurantFilter{
		Cuisine: c.Query("cuisine"),
		Search:  c.Query("search"),
		City:    c.Query("city"),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Restaurants", gin.H{"count": len(restaurants), "restaurants": restaurants})
}

// GetRestaurant returns one restaurant with its menu.
func (h *PublicHandler) GetRestaurant(c *gin.Context) {
	id := coerceInt(c.Param("id"), 0)
	if id <= 0 {
		respondError(c, h.logger, services.ValidationError(services.FieldError{Field: "id", Message: "Invalid restaurant id"}))
		return
	}

	restaurant, err := h.catalog.GetRestaurant(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Restaurant", restaurant)
}

// GetOrderStatuses documents the order lifecycle for clients.
func (h *PublicHandler) GetOrderStatuses(c *gin.Context) {
	respond(c, http.StatusOK, "Order lifecycle", gin.H{
		"statuses":        models.AllOrderStatuses,
		"initial":         models.StatusPending,
		"terminal_states": []models.OrderStatus{models.StatusDelivered, models.StatusCancelled},
	})
}
