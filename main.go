package main

import (
	"net/http"

	"quickbite-api/auth"
	"quickbite-api/config"
	"quickbite-api/database"
	"quickbite-api/handlers"
	"quickbite-api/mailer"
	"quickbite-api/middleware"
	"quickbite-api/pkg/logger"
	"quickbite-api/routes"
	"quickbite-api/services"
	"quickbite-api/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(cfg)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}

	blobs, err := storage.NewMinioStore(cfg.Storage, log)
	if err != nil {
		log.Fatal("blob store init failed", zap.Error(err))
	}

	mail := mailer.NewSMTPMailer(cfg.SMTP, log)
	tokens := auth.NewTokenIssuer(cfg.JWT.SigningKey, cfg.JWT.Expiry)

	registration := services.NewRegistrationService(db, mail, blobs, tokens, log)
	orders := services.NewOrderService(db, log)
	addresses := services.NewAddressService(db, log)
	catalog := services.NewCatalogService(db, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.NewHTTPMetrics(cfg.Server.Name).Middleware())

	// CORS for frontend integration
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": cfg.Server.Name,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.SetupRoutes(r, tokens, routes.Handlers{
		Auth:       handlers.NewAuthHandler(registration, blobs, log),
		Public:     handlers.NewPublicHandler(catalog, log),
		Address:    handlers.NewAddressHandler(addresses, log),
		Order:      handlers.NewOrderHandler(orders, log),
		Restaurant: handlers.NewRestaurantHandler(catalog, orders, log),
	})

	log.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}
