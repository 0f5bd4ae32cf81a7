package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yogaflow/studio-booking/pkg/telemetry"
)

var (
	// Booking counters
	BookingsCreated   *telemetry.Counter
	BookingsCancelled *telemetry.Counter
	BookingsFailed    *telemetry.Counter
	BookingsAttended  *telemetry.Counter

	// Counter reconciliation
	DriftRepaired *telemetry.Counter

	// Histograms
	RequestDuration *telemetry.Histogram

	// Gauges
	ActiveBookings *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
)

// Init initializes all booking metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	BookingsCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "booking_creations_total",
		Description: "Total number of bookings created",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsCancelled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "booking_cancellations_total",
		Description: "Total number of cancelled bookings",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsFailed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "booking_failures_total",
		Description: "Total number of rejected booking attempts by reason",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsAttended, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "booking_attendances_total",
		Description: "Total number of bookings marked attended",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	DriftRepaired, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "booking_counter_repairs_total",
		Description: "Total number of instance counters repaired by recalculation",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RequestDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "booking_request_duration_seconds",
		Description: "HTTP request duration in seconds",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10})
	if err != nil {
		return err
	}

	ActiveBookings, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "booking_active_total",
		Description: "Current number of seat-occupying bookings",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	return nil
}

// RecordCreation records a successful booking creation
func RecordCreation(ctx context.Context, instanceID int64, status string) {
	if BookingsCreated != nil {
		BookingsCreated.Inc(ctx,
			attribute.Int64("instance_id", instanceID),
			attribute.String("status", status),
		)
	}
	if ActiveBookings != nil {
		ActiveBookings.Inc(ctx)
	}
}

// RecordCancellation records a booking cancellation
func RecordCancellation(ctx context.Context, instanceID int64) {
	if BookingsCancelled != nil {
		BookingsCancelled.Inc(ctx,
			attribute.Int64("instance_id", instanceID),
		)
	}
	if ActiveBookings != nil {
		ActiveBookings.Dec(ctx)
	}
}

// RecordFailure records a rejected booking attempt
func RecordFailure(ctx context.Context, reason string) {
	if BookingsFailed != nil {
		BookingsFailed.Inc(ctx,
			attribute.String("reason", reason),
		)
	}
}

// RecordAttendance records bookings marked attended by the maintenance job
func RecordAttendance(ctx context.Context, count int64) {
	if BookingsAttended != nil {
		BookingsAttended.Add(ctx, count)
	}
}

// RecordDriftRepair records an instance counter corrected by recalculation
func RecordDriftRepair(ctx context.Context, instanceID int64, drift int64) {
	if DriftRepaired != nil {
		DriftRepaired.Inc(ctx,
			attribute.Int64("instance_id", instanceID),
			attribute.Int64("drift", drift),
		)
	}
}

// RecordRequestDuration records HTTP request duration
func RecordRequestDuration(ctx context.Context, operation string, durationSeconds float64) {
	if RequestDuration != nil {
		RequestDuration.Record(ctx, durationSeconds,
			attribute.String("operation", operation),
		)
	}
}
