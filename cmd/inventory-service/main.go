package main

import (
	"context"

	"github.com/sirupsen/logrus"
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
	cfg, err := config.Load(config.ServiceInventory)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := server.NewLogger(cfg.Server.LogLevel)
	logger.WithFields(logrus.Fields{
		"version":    version,
		"build_time": buildTime,
	}).Info("Starting inventory service")

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
	roomRepository := database.NewRoomRepository(db)
	hotelRepository := database.NewHotelRepository(db)
	reservationRepository := database.NewReservationRepository(db)

	// Services
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenExpiry)
	reservationService := services.NewReservationService(reservationRepository, logger)
	roomService := services.NewRoomService(roomRepository, hotelRepository, logger)
	hotelService := services.NewHotelService(hotelRepository, logger)

	// Routes
	roomHandler := handlers.NewRoomHandler(reservationService, roomService, logger)
	hotelHandler := handlers.NewHotelHandler(hotelService, logger)

	router := server.NewRouter(cfg, version, db, logger)
	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(jwtService, logger))
	{
		rooms := v1.Group("/rooms")
		{
			rooms.GET("", roomHandler.ListAvailable)
			rooms.POST("", middleware.RequireRole(models.RoleAdmin), roomHandler.CreateRoom)
			rooms.GET("/recommend", roomHandler.Recommend)
			rooms.GET("/reservations/:requestId", roomHandler.GetReservation)
			rooms.GET("/:id", roomHandler.GetRoom)
			rooms.POST("/:id/confirm-availability", roomHandler.ConfirmAvailability)
			rooms.POST("/:id/release/:requestId", roomHandler.Release)
		}

		hotels := v1.Group("/hotels")
		{
			hotels.GET("", hotelHandler.List)
			hotels.POST("", middleware.RequireRole(models.RoleAdmin), hotelHandler.Create)
		}
	}

	server.Run(cfg, router, logger, func(ctx context.Context) {
		if err := shutdownTracing(ctx); err != nil {
			logger.WithError(err).Warn("Failed to flush traces")
		}
	})
}
