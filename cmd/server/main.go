package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"line_order/internal/config"
	"line_order/internal/handlers"
	"line_order/internal/redis"
	"line_order/internal/services"
	"line_order/pkg/liff"
	"line_order/pkg/orderapi"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	// Initialize the order service client
	orderAPI := orderapi.NewClient(cfg.OrderAPIURL)

	// Every page load gets its own identity provider bound to the
	// credentials the webview presents.
	newProvider := func(creds liff.Credentials) liff.Provider {
		return liff.NewClient(cfg.LineAPIURL, cfg.LiffID, creds)
	}

	sessionTTL := time.Duration(cfg.SessionTimeout) * time.Second
	menuTTL := time.Duration(cfg.MenuCacheTTL) * time.Second

	// Initialize services
	notifier := services.NewNotifier()
	sessionService := services.NewSessionService(newProvider, redisClient, sessionTTL)
	menuService := services.NewMenuService(orderAPI, redisClient, notifier, menuTTL)
	cartService := services.NewCartService(redisClient, sessionTTL, cfg.DeliveryFee)
	orderService := services.NewOrderService(orderAPI, redisClient, notifier, cfg.DeliveryFee, sessionTTL)

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(sessionService)
	orderHandler := handlers.NewOrderHandler(sessionService, menuService, cartService, orderService, notifier)

	// Setup routes
	router := gin.Default()

	api := router.Group("/api")
	{
		api.POST("/session", sessionHandler.Bootstrap)
		api.POST("/session/login", sessionHandler.Login)

		api.GET("/menu", orderHandler.GetMenu)
		api.GET("/form", orderHandler.GetForm)

		api.GET("/cart", orderHandler.GetCart)
		api.POST("/cart/update", orderHandler.UpdateCart)
		api.POST("/cart/clear", orderHandler.ClearCart)

		api.POST("/orders", orderHandler.SubmitOrder)
		api.GET("/orders/confirmation", orderHandler.GetConfirmation)
		api.POST("/orders/new", orderHandler.NewOrder)
		api.GET("/orders/history", orderHandler.GetHistory)

		api.GET("/notification", orderHandler.GetNotification)
		api.DELETE("/notification", orderHandler.DismissNotification)
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
