package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tastetrail/restaurant-backend/internal/auth"
	"github.com/tastetrail/restaurant-backend/internal/config"
	"github.com/tastetrail/restaurant-backend/internal/handlers"
	"github.com/tastetrail/restaurant-backend/internal/middleware"
	"github.com/tastetrail/restaurant-backend/internal/repository"
	"github.com/tastetrail/restaurant-backend/internal/service"
	"github.com/tastetrail/restaurant-backend/pkg/logger"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting restaurant api server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
	)

	// Connect to the document store
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	client, err := repository.Connect(connectCtx, cfg.Mongo.URI)
	cancelConnect()
	if err != nil {
		log.Error("failed to connect to mongodb", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Error("failed to disconnect from mongodb", "error", err)
		}
	}()

	db := client.Database(cfg.Mongo.Database)
	log.Info("connected to mongodb", "database", cfg.Mongo.Database)

	// Initialize repositories
	foodRepo := repository.NewMongoFoodRepository(db)
	orderRepo := repository.NewMongoOrderRepository(db)

	// Initialize services
	foodService := service.NewFoodService(foodRepo)
	orderService := service.NewOrderService(foodRepo, orderRepo, log)

	// Initialize auth verifier
	verifier := auth.NewJWTVerifier(cfg.Auth.JWTSecret)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(log)
	foodHandler := handlers.NewFoodHandler(foodService, log)
	orderHandler := handlers.NewOrderHandler(orderService, log)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Register health check endpoint
	r.Get("/health", healthHandler.ServeHTTP)

	// Public routes
	r.Get("/foods", foodHandler.ListFoods)
	r.Get("/foods/{foodId}", foodHandler.GetFood)
	r.Get("/topFoods", foodHandler.TopFoods)

	// Routes requiring a verified identity
	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(verifier))

		r.Post("/foods", foodHandler.CreateFood)
		r.Put("/foods/{foodId}", foodHandler.UpdateFood)
		r.Patch("/foods/{foodId}", foodHandler.UpdateFood)
		r.Delete("/foods/{foodId}", foodHandler.DeleteFood)
		r.Patch("/foods/{foodId}/stock", foodHandler.AdjustStock)

		r.Get("/orders", orderHandler.ListOrders)
		r.Post("/orders", orderHandler.CreateOrder)
		r.Delete("/orders/{orderId}", orderHandler.DeleteOrder)
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}
