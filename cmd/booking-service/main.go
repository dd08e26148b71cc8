package main

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/staybook/reservation-backend/internal/cache"
	"github.com/staybook/reservation-backend/internal/clients"
	"github.com/staybook/reservation-backend/internal/config"
	"github.com/staybook/reservation-backend/internal/database"
	"github.com/staybook/reservation-backend/internal/handlers"
	"github.com/staybook/reservation-backend/internal/middleware"
	"github.com/staybook/reservation-backend/internal/models"
	"github.com/staybook/reservation-backend/internal/server"
	"github.com/staybook/reservation-backend/internal/services"
	"github.com/staybook/reservation-backend/internal/tracing"
	"github.com/staybook/reservation-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	cfg, err := config.Load(config.ServiceBooking)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := server.NewLogger(cfg.Server.LogLevel)
	logger.WithFields(logrus.Fields{
		"version":    version,
		"build_time": buildTime,
	}).Info("Starting booking service")

	shutdownTracing, err := tracing.InitTracerProvider(cfg.Service, cfg.Tracing.JaegerEndpoint, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize tracing: %v", err)
	}

	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Repositories
	bookingRepository := database.NewBookingRepository(db)
	userRepository := database.NewUserRepository(db)

	// Outbound inventory client; background calls authenticate with a service token
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenExpiry)
	inventoryClient := clients.NewInventoryClient(cfg.Inventory, jwtService.GenerateServiceToken, logger)

	// Offers cache is optional
	var offers services.OffersCache
	offersCache, err := cache.NewOffersCache(context.Background(), cfg.Redis)
	if err != nil {
		logger.WithError(err).Warn("Offers cache disabled")
	} else if offersCache != nil {
		defer offersCache.Close()
		offers = offersCache
		logger.Info("Offers cache enabled")
	}

	// Services
	auditService := services.NewAuditService(db)
	bookingService := services.NewBookingService(
		bookingRepository,
		userRepository,
		inventoryClient,
		offers,
		auditService,
		logger,
	)

	var cronService *services.CronService
	if cfg.Reconcile.Enabled {
		reconciler := services.NewReconciliationService(
			bookingRepository,
			inventoryClient,
			cfg.Reconcile.PendingAfter,
			cfg.Reconcile.BatchSize,
			logger,
		)
		cronService = services.NewCronService(reconciler, cfg.Reconcile.Schedule, logger)
		if err := cronService.Start(); err != nil {
			logger.Fatalf("Failed to start reconciliation job: %v", err)
		}
	}

	// Routes
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)

	router := server.NewRouter(cfg, version, db, logger)
	booking := router.Group("/api/v1/booking")
	booking.Use(middleware.AuthMiddleware(jwtService, logger))
	{
		booking.GET("", middleware.RequireRole(models.RoleAdmin), bookingHandler.FindAll)
		booking.POST("", middleware.RateLimit(cfg.RateLimit, logger), bookingHandler.Create)
		booking.GET("/offers", bookingHandler.GetOffers)
		booking.GET("/by-username/:username", bookingHandler.FindAllByUsername)
		booking.GET("/:requestId", bookingHandler.FindByRequestID)
		booking.DELETE("/:requestId", bookingHandler.Cancel)
	}

	server.Run(cfg, router, logger, func(ctx context.Context) {
		if cronService != nil {
			logger.Info("Stopping reconciliation job...")
			cronService.Stop()
		}
		if err := shutdownTracing(ctx); err != nil {
			logger.WithError(err).Warn("Failed to flush traces")
		}
	})
}
