package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/Jayr222/appointment-systemv2-sub002/config"
	"github.com/Jayr222/appointment-systemv2-sub002/cron"
	"github.com/Jayr222/appointment-systemv2-sub002/database"
	doctorRepo "github.com/Jayr222/appointment-systemv2-sub002/database/repository/doctor"
	reservationRepo "github.com/Jayr222/appointment-systemv2-sub002/database/repository/reservation"
	"github.com/Jayr222/appointment-systemv2-sub002/handlers"
	"github.com/Jayr222/appointment-systemv2-sub002/middleware"
	"github.com/Jayr222/appointment-systemv2-sub002/routes"
	"github.com/Jayr222/appointment-systemv2-sub002/services/availability"
	"github.com/Jayr222/appointment-systemv2-sub002/services/booking"
	"github.com/Jayr222/appointment-systemv2-sub002/services/realtime"
	"github.com/Jayr222/appointment-systemv2-sub002/services/tasks"
	"github.com/Jayr222/appointment-systemv2-sub002/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	// Repositories.
	doctors := doctorRepo.NewMongoDoctorRepo()
	reservations := reservationRepo.NewMongoReservationRepo()
	for _, repo := range []any{doctors, reservations} {
		if idx, ok := repo.(interface{ EnsureIndexes() error }); ok {
			if err := idx.EnsureIndexes(); err != nil {
				logger.Sugar().Fatalf("main: failed to ensure indexes: %v", err)
			}
		}
	}

	// Availability broadcast over Redis so peers see each other's commits.
	events := realtime.NewRedisChannel(utils.GetCacheClient())

	// Services.
	resolver := &availability.DefaultResolver{
		Doctors:      doctors,
		Reservations: reservations,
	}

	expiry := tasks.NewAsynqScheduler(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer expiry.Close()

	coordinator := booking.NewCoordinator(
		doctors,
		reservations,
		resolver,
		events,
		booking.NewThrottle(config.AppConfig.BookingRatePerMin, config.AppConfig.BookingBurst),
		expiry,
		time.Duration(config.AppConfig.PendingHoldMinutes)*time.Minute,
	)

	cron.InitExpiryWorker(coordinator)

	// Assemble the handler bundle.
	handlerBundle := &routes.HandlerBundle{
		Slots:   handlers.NewSlotsHandler(resolver, logger),
		Booking: handlers.NewBookingHandler(coordinator, reservations, logger),
		Stream:  handlers.NewStreamHandler(events, logger),
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
