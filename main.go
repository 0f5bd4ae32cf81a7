package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yogaflow/studio-booking/internal/di"
	"github.com/yogaflow/studio-booking/internal/metrics"
	"github.com/yogaflow/studio-booking/internal/service"
	"github.com/yogaflow/studio-booking/internal/store"
	"github.com/yogaflow/studio-booking/pkg/config"
	"github.com/yogaflow/studio-booking/pkg/logger"
	"github.com/yogaflow/studio-booking/pkg/middleware"
	pkgredis "github.com/yogaflow/studio-booking/pkg/redis"
	"github.com/yogaflow/studio-booking/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: "studio-booking",
		Development: cfg.IsDevelopment(),
	}
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Studio Booking Service...")

	ctx := context.Background()

	// Initialize OpenTelemetry
	telemetryCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	}
	if _, err := telemetry.Init(ctx, telemetryCfg); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	} else if telemetryCfg.Enabled {
		appLog.Info(fmt.Sprintf("Telemetry initialized (collector: %s)", telemetryCfg.CollectorAddr))
	}
	defer telemetry.Shutdown(ctx)

	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize metrics: %v", err))
	}

	// Initialize the document store
	fs, err := store.NewFirestore(ctx, &store.FirestoreConfig{
		ProjectID:       cfg.Firestore.ProjectID,
		CredentialsFile: cfg.Firestore.CredentialsFile,
		MaxRetries:      cfg.Firestore.MaxRetries,
		RetryInterval:   cfg.Firestore.RetryInterval,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Firestore connection failed: %v", err))
	}
	defer fs.Close()
	appLog.Info(fmt.Sprintf("Firestore connected (project: %s)", cfg.Firestore.ProjectID))

	authClient, err := fs.AuthClient(ctx)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Firebase auth initialization failed: %v", err))
	}

	// Redis backs idempotency caching; the service runs without it
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(ctx, &pkgredis.Config{
			Host:          cfg.Redis.Host,
			Port:          cfg.Redis.Port,
			Password:      cfg.Redis.Password,
			DB:            cfg.Redis.DB,
			PoolSize:      cfg.Redis.PoolSize,
			MinIdleConns:  cfg.Redis.MinIdleConns,
			DialTimeout:   cfg.Redis.DialTimeout,
			ReadTimeout:   cfg.Redis.ReadTimeout,
			WriteTimeout:  cfg.Redis.WriteTimeout,
			MaxRetries:    3,
			RetryInterval: time.Second,
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Redis connection failed, idempotency caching disabled: %v", err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			appLog.Info("Redis connected")
		}
	}

	// Initialize Kafka event publisher
	var eventPublisher service.EventPublisher
	if cfg.Kafka.Enabled {
		eventPublisher, err = service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ServiceName: "studio-booking",
			ClientID:    cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Kafka connection failed, using no-op publisher: %v", err))
			eventPublisher = service.NewNoOpEventPublisher()
		} else {
			appLog.Info("Kafka event publisher connected")
		}
	} else {
		eventPublisher = service.NewNoOpEventPublisher()
	}
	defer eventPublisher.Close()

	container := di.NewContainer(&di.ContainerConfig{
		Store:          fs,
		Redis:          redisClient,
		EventPublisher: eventPublisher,
		Version:        cfg.App.Version,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())

	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	authMiddleware := middleware.AuthMiddleware(middleware.NewFirebaseVerifier(authClient))

	v1 := router.Group("/api/v1")
	{
		bookings := v1.Group("/bookings")
		bookings.Use(authMiddleware)

		writes := []gin.HandlerFunc{}
		if redisClient != nil {
			idemCfg := middleware.DefaultIdempotencyConfig(redisClient.Client())
			writes = append(writes, middleware.IdempotencyMiddleware(idemCfg))
		}

		bookings.POST("", append(writes, container.BookingHandler.CreateBooking)...)
		bookings.POST("/:id/cancel", append(writes, container.BookingHandler.CancelBooking)...)
		bookings.PATCH("/:id", append(writes, container.BookingHandler.UpdateBooking)...)
		bookings.GET("", container.BookingHandler.ListBookings)
		bookings.GET("/:id", container.BookingHandler.GetBooking)

		admin := v1.Group("/admin")
		admin.Use(authMiddleware)
		{
			admin.POST("/recalculate", container.AdminHandler.RecalculateAll)
			admin.POST("/instances/:id/recalculate", container.AdminHandler.RecalculateInstance)
			admin.GET("/instances/:id/bookings", container.AdminHandler.GetInstanceBookings)
			admin.POST("/mark-attended", container.AdminHandler.MarkAttended)
			admin.DELETE("/bookings/:id", container.AdminHandler.DeleteBooking)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		appLog.Info(fmt.Sprintf("Studio Booking Service listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
