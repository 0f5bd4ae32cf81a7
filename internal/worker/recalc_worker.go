package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yogaflow/studio-booking/internal/domain"
	"github.com/yogaflow/studio-booking/internal/service"
	"github.com/yogaflow/studio-booking/pkg/logger"
	"github.com/yogaflow/studio-booking/pkg/retry"
)

// RecalcWorkerConfig contains configuration for the recalculation worker
type RecalcWorkerConfig struct {
	// ScanInterval is the interval between full reconciliation passes
	ScanInterval time.Duration
	// MaxRetries bounds retries of a failed pass before waiting for the
	// next tick
	MaxRetries int
}

// DefaultRecalcWorkerConfig returns default configuration
func DefaultRecalcWorkerConfig() *RecalcWorkerConfig {
	return &RecalcWorkerConfig{
		ScanInterval: time.Hour,
		MaxRetries:   3,
	}
}

// RecalcWorker periodically reconciles every instance's denormalized seat
// counter against the true count of counting-status bookings, repairing
// drift left behind by the documented create race or partial failures
// outside the batch path.
type RecalcWorker struct {
	bookingService service.BookingService
	config         *RecalcWorkerConfig
	log            *logger.Logger
	stopCh         chan struct{}
	wg             sync.WaitGroup
	mu             sync.Mutex
	running        bool

	totalRepaired int64
	lastScanTime  time.Time
	lastRepaired  int
}

// NewRecalcWorker creates a new recalculation worker
func NewRecalcWorker(bookingService service.BookingService, config *RecalcWorkerConfig) *RecalcWorker {
	if config == nil {
		config = DefaultRecalcWorkerConfig()
	}
	return &RecalcWorker{
		bookingService: bookingService,
		config:         config,
		log:            logger.Get(),
		stopCh:         make(chan struct{}),
	}
}

// Start starts the recalculation worker
func (w *RecalcWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("recalc worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting recalc worker")

	w.wg.Add(1)
	go w.scan(ctx)

	return nil
}

// Stop stops the recalculation worker
func (w *RecalcWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping recalc worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Recalc worker stopped")
}

func (w *RecalcWorker) scan(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.ScanInterval)
	defer ticker.Stop()

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

// process runs one full reconciliation pass. The whole pass is retried on
// transient store failures; business errors are permanent.
func (w *RecalcWorker) process(ctx context.Context) {
	w.mu.Lock()
	w.lastScanTime = time.Now()
	w.mu.Unlock()

	retryCfg := &retry.Config{
		MaxRetries:      w.config.MaxRetries,
		InitialInterval: 2 * time.Second,
	}

	var repaired, checked int
	result := retry.DoWithCallback(ctx, retryCfg, func(ctx context.Context) error {
		resp, err := w.bookingService.RecalculateAll(ctx)
		if err != nil {
			if domain.IsStoreError(err) {
				return err
			}
			return retry.Permanent(err)
		}
		checked = resp.InstancesChecked
		repaired = resp.InstancesRepaired
		return nil
	}, func(attempt int, err error, next time.Duration) {
		w.log.Warn(fmt.Sprintf("Reconciliation pass failed (attempt %d), retrying in %s: %v", attempt, next, err))
	})
	if result.Err != nil {
		w.log.Error(fmt.Sprintf("Reconciliation pass gave up after %d attempts: %v", result.Attempts, result.LastError))
		return
	}

	w.mu.Lock()
	w.lastRepaired = repaired
	w.totalRepaired += int64(repaired)
	w.mu.Unlock()

	if repaired > 0 {
		w.log.Warn(fmt.Sprintf("Repaired %d of %d instance counters", repaired, checked))
	} else {
		w.log.Debug(fmt.Sprintf("All %d instance counters clean", checked))
	}
}

// GetStats returns worker statistics
func (w *RecalcWorker) GetStats() *RecalcWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &RecalcWorkerStats{
		IsRunning:     w.running,
		TotalRepaired: w.totalRepaired,
		LastScanTime:  w.lastScanTime,
		LastRepaired:  w.lastRepaired,
	}
}

// RecalcWorkerStats contains worker statistics
type RecalcWorkerStats struct {
	IsRunning     bool      `json:"is_running"`
	TotalRepaired int64     `json:"total_repaired"`
	LastScanTime  time.Time `json:"last_scan_time"`
	LastRepaired  int       `json:"last_repaired"`
}
