// Package main runs the registration and pricing HTTP API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pharma-academy/backend/config"
	"github.com/pharma-academy/backend/internal/checkout"
	"github.com/pharma-academy/backend/internal/events"
	"github.com/pharma-academy/backend/internal/invoicing"
	"github.com/pharma-academy/backend/internal/middleware"
	"github.com/pharma-academy/backend/internal/notify"
	"github.com/pharma-academy/backend/internal/orders"
	"github.com/pharma-academy/backend/internal/payments"
	"github.com/pharma-academy/backend/internal/pricing"
	"github.com/pharma-academy/backend/pkg/database"
	"github.com/pharma-academy/backend/pkg/queue"
	"github.com/pharma-academy/backend/pkg/redis"
	"github.com/pharma-academy/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jobQueue := queue.NewQueue(rdb.Client, logger)
	notifier := notify.NewNotifier(jobQueue, cfg.Email, cfg.Notify, logger)
	notifyHandler := notify.NewHandler(notifier, logger)

	// Events (CMS-synced catalog)
	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo, logger)

	// Orders and pricing
	orderRepo := orders.NewRepository(pool)
	pricingService := pricing.NewService(orderRepo)
	pricingHandler := pricing.NewHandler(pricingService, logger)
	draftService := orders.NewDraftService(orderRepo, eventRepo, pricingService, logger)
	orderHandler := orders.NewHandler(orderRepo, draftService, logger)

	// Checkout: card payments and invoicing
	stripeGateway := payments.NewStripeGateway(cfg.Stripe, logger)
	invoicingClient := invoicing.NewClient(cfg.Invoicing, rdb.Client, logger)
	checkoutService := checkout.NewService(orderRepo, pricingService, stripeGateway, invoicingClient, invoicingClient, notifier, logger)
	checkoutHandler := checkout.NewHandler(checkoutService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	api := router.Group("/api")
	{
		api.GET("/events", eventHandler.List)
		api.GET("/events/:slug", eventHandler.GetBySlug)
		api.PUT("/events/:slug", eventHandler.Upsert)
		api.GET("/events/:slug/pricing", pricingHandler.GetQuote)

		api.POST("/orders", orderHandler.ApplyField)
		api.GET("/orders", orderHandler.GetDraft)
		api.POST("/orders/:id/status", orderHandler.UpdateStatus)

		api.POST("/checkout", checkoutHandler.Checkout)
		api.POST("/agenda-request", notifyHandler.AgendaRequest)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
