package routes

import (
	"quickbite-api/auth"
	"quickbite-api/handlers"
	"quickbite-api/middleware"
	"quickbite-api/models"

	"github.com/gin-gonic/gin"
)

// Handlers bundles everything SetupRoutes wires onto the engine.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Public     *handlers.PublicHandler
	Address    *handlers.AddressHandler
	Order      *handlers.OrderHandler
	Restaurant *handlers.RestaurantHandler
}

func SetupRoutes(r *gin.Engine, tokens *auth.TokenIssuer, h Handlers) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		// Auth
		public.POST("/auth/register", h.Auth.Register)
		public.POST("/auth/register-restaurant", h.Auth.RegisterRestaurant)
		public.POST("/auth/verify-otp", h.Auth.VerifyOTP)
		public.POST("/auth/resend-otp", h.Auth.ResendOTP)
		public.POST("/auth/login", h.Auth.Login)
		public.POST("/auth/login-restaurant", h.Auth.LoginRestaurant)
		public.POST("/auth/forgot-password", h.Auth.ForgotPassword)
		public.POST("/auth/reset-password", h.Auth.ResetPassword)

		// Restaurants & menus (no auth needed)
		public.GET("/restaurants", h.Public.ListRestaurants)
		public.GET("/restaurants/:id", h.Public.GetRestaurant)
		public.GET("/order-statuses", h.Public.GetOrderStatuses)
	}

	// ── Authenticated routes ───────────────────────────────────────
	authed := r.Group("/api")
	authed.Use(middleware.AuthRequired(tokens))
	{
		authed.GET("/profile", h.Auth.Profile)

		// Address book
		authed.POST("/addresses", h.Address.CreateAddress)
		authed.GET("/addresses", h.Address.ListAddresses)
		authed.PUT("/addresses/:id", h.Address.UpdateAddress)
		authed.DELETE("/addresses/:id", h.Address.DeleteAddress)

		// Orders: viewing is open to the order's customer or the owning
		// restaurant's owner; the service enforces which.
		authed.GET("/orders/:id", h.Order.GetOrder)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/api/customer")
	customer.Use(middleware.AuthRequired(tokens), middleware.RoleRequired(models.RoleCustomer))
	{
		customer.POST("/orders", h.Order.PlaceOrder)
		customer.GET("/orders", h.Order.GetMyOrders)
	}

	// ── Restaurant owner routes ────────────────────────────────────
	restaurant := r.Group("/api/restaurant")
	restaurant.Use(middleware.AuthRequired(tokens), middleware.RoleRequired(models.RoleRestaurantOwner))
	{
		// Restaurant management
		restaurant.GET("/", h.Restaurant.GetMyRestaurant)
		restaurant.PUT("/", h.Restaurant.UpdateRestaurant)

		// Menu management
		restaurant.POST("/categories", h.Restaurant.CreateCategory)
		restaurant.DELETE("/categories/:categoryId", h.Restaurant.DeleteCategory)
		restaurant.POST("/menu", h.Restaurant.AddMenuItem)
		restaurant.PUT("/menu/:itemId", h.Restaurant.UpdateMenuItem)
		restaurant.DELETE("/menu/:itemId", h.Restaurant.DeleteMenuItem)

		// Order management
		restaurant.GET("/orders", h.Restaurant.GetRestaurantOrders)
		restaurant.PUT("/orders/:id/status", h.Restaurant.UpdateOrderStatus)
	}
}
