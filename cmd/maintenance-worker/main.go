package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/yogaflow/studio-booking/internal/metrics"
	"github.com/yogaflow/studio-booking/internal/repository"
	"github.com/yogaflow/studio-booking/internal/service"
	"github.com/yogaflow/studio-booking/internal/store"
	"github.com/yogaflow/studio-booking/internal/worker"
	"github.com/yogaflow/studio-booking/pkg/config"
	"github.com/yogaflow/studio-booking/pkg/logger"
	"github.com/yogaflow/studio-booking/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: "maintenance-worker",
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
	appLog.Info("Starting Maintenance Worker...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    "maintenance-worker",
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	}
	if _, err := telemetry.Init(ctx, telemetryCfg); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	}
	defer telemetry.Shutdown(ctx)

	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize metrics: %v", err))
	}

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

	var eventPublisher service.EventPublisher
	if cfg.Kafka.Enabled {
		eventPublisher, err = service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ServiceName: "maintenance-worker",
			ClientID:    cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Kafka connection failed, using no-op publisher: %v", err))
			eventPublisher = service.NewNoOpEventPublisher()
		}
	} else {
		eventPublisher = service.NewNoOpEventPublisher()
	}
	defer eventPublisher.Close()

	bookingService := service.NewBookingService(
		fs,
		repository.NewBookingRepository(fs),
		repository.NewInstanceRepository(fs),
		repository.NewCourseRepository(fs),
		eventPublisher,
		nil,
	)

	attendanceWorker := worker.NewAttendanceWorker(bookingService, &worker.AttendanceWorkerConfig{
		ScanInterval: cfg.Worker.AttendanceInterval,
	})
	recalcWorker := worker.NewRecalcWorker(bookingService, &worker.RecalcWorkerConfig{
		ScanInterval: cfg.Worker.RecalcInterval,
		MaxRetries:   3,
	})

	if err := attendanceWorker.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start attendance worker: %v", err))
	}
	if err := recalcWorker.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start recalc worker: %v", err))
	}

	appLog.Info("Maintenance Worker running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down workers...")

	recalcWorker.Stop()
	attendanceWorker.Stop()

	appLog.Info("Maintenance Worker exited gracefully")
}
