package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yogaflow/studio-booking/internal/service"
	"github.com/yogaflow/studio-booking/pkg/logger"
)

// AttendanceWorkerConfig contains configuration for the attendance worker
type AttendanceWorkerConfig struct {
	// ScanInterval is the interval between attendance sweeps
	ScanInterval time.Duration
}

// DefaultAttendanceWorkerConfig returns default configuration
func DefaultAttendanceWorkerConfig() *AttendanceWorkerConfig {
	return &AttendanceWorkerConfig{
		ScanInterval: 15 * time.Minute,
	}
}

// AttendanceWorker periodically moves confirmed bookings on past class
// instances to attended
type AttendanceWorker struct {
	bookingService service.BookingService
	config         *AttendanceWorkerConfig
	log            *logger.Logger
	stopCh         chan struct{}
	wg             sync.WaitGroup
	mu             sync.Mutex
	running        bool

	totalMarked   int64
	lastScanTime  time.Time
	lastScanCount int
}

// NewAttendanceWorker creates a new attendance worker
func NewAttendanceWorker(bookingService service.BookingService, config *AttendanceWorkerConfig) *AttendanceWorker {
	if config == nil {
		config = DefaultAttendanceWorkerConfig()
	}
	return &AttendanceWorker{
		bookingService: bookingService,
		config:         config,
		log:            logger.Get(),
		stopCh:         make(chan struct{}),
	}
}

// Start starts the attendance worker
func (w *AttendanceWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("attendance worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting attendance worker")

	w.wg.Add(1)
	go w.scan(ctx)

	return nil
}

// Stop stops the attendance worker
func (w *AttendanceWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping attendance worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Attendance worker stopped")
}

func (w *AttendanceWorker) scan(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.ScanInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.process(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.process(ctx)
		}
	}
}

func (w *AttendanceWorker) process(ctx context.Context) {
	w.mu.Lock()
	w.lastScanTime = time.Now()
	w.mu.Unlock()

	result, err := w.bookingService.MarkPastBookingsAsAttended(ctx)
	if err != nil {
		w.log.Error(fmt.Sprintf("Attendance sweep failed: %v", err))
		return
	}

	w.mu.Lock()
	w.lastScanCount = result.BookingsMarked
	w.totalMarked += int64(result.BookingsMarked)
	w.mu.Unlock()

	if result.BookingsMarked > 0 {
		w.log.Info(fmt.Sprintf("Marked %d bookings as attended", result.BookingsMarked))
	}
}

// GetStats returns worker statistics
func (w *AttendanceWorker) GetStats() *AttendanceWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &AttendanceWorkerStats{
		IsRunning:     w.running,
		TotalMarked:   w.totalMarked,
		LastScanTime:  w.lastScanTime,
		LastScanCount: w.lastScanCount,
	}
}

// AttendanceWorkerStats contains worker statistics
type AttendanceWorkerStats struct {
	IsRunning     bool      `json:"is_running"`
	TotalMarked   int64     `json:"total_marked"`
	LastScanTime  time.Time `json:"last_scan_time"`
	LastScanCount int       `json:"last_scan_count"`
}
