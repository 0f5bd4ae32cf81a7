package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yogaflow/studio-booking/internal/domain"
	"github.com/yogaflow/studio-booking/internal/dto"
	"github.com/yogaflow/studio-booking/internal/metrics"
	"github.com/yogaflow/studio-booking/internal/repository"
	"github.com/yogaflow/studio-booking/internal/store"
	"github.com/yogaflow/studio-booking/pkg/telemetry"
)

// BookingService defines the interface for the capacity-reconciling
// booking engine. It is the sole writer of each instance's denormalized
// currentBookings counter; every counter mutation commits in the same
// atomic batch as the booking mutation that caused it.
type BookingService interface {
	// CreateBooking books a seat on a class instance for the user
	CreateBooking(ctx context.Context, userID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)

	// UpdateBooking applies a status patch, adjusting the seat counter when
	// the booking moves in or out of the counting set
	UpdateBooking(ctx context.Context, bookingID string, req *dto.UpdateBookingRequest) error

	// CancelBooking cancels a booking, enforcing the pre-start cutoff
	CancelBooking(ctx context.Context, bookingID string) error

	// DeleteBooking removes a booking document entirely
	DeleteBooking(ctx context.Context, bookingID string) error

	// RecalculateInstance repairs the instance counter from the true count
	RecalculateInstance(ctx context.Context, instanceID int64) (*dto.RecalculateResponse, error)

	// RecalculateAll repairs every instance counter, skipping clean ones
	RecalculateAll(ctx context.Context) (*dto.RecalculateResponse, error)

	// MarkPastBookingsAsAttended moves confirmed bookings on past instances
	// to attended
	MarkPastBookingsAsAttended(ctx context.Context) (*dto.MarkAttendedResponse, error)
}

// bookingService implements BookingService
type bookingService struct {
	store          store.Store
	bookingRepo    repository.BookingRepository
	instanceRepo   repository.InstanceRepository
	courseRepo     repository.CourseRepository
	eventPublisher EventPublisher
	now            func() time.Time
}

// BookingServiceConfig contains configuration for the booking service
type BookingServiceConfig struct {
	// Now overrides the clock used for time-threshold checks
	Now func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(
	st store.Store,
	bookingRepo repository.BookingRepository,
	instanceRepo repository.InstanceRepository,
	courseRepo repository.CourseRepository,
	eventPublisher EventPublisher,
	cfg *BookingServiceConfig,
) BookingService {
	now := time.Now
	if cfg != nil && cfg.Now != nil {
		now = cfg.Now
	}
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &bookingService{
		store:          st,
		bookingRepo:    bookingRepo,
		instanceRepo:   instanceRepo,
		courseRepo:     courseRepo,
		eventPublisher: eventPublisher,
		now:            now,
	}
}

// CreateBooking books a seat on a class instance.
//
// The capacity and duplicate checks are read-then-decide without a lock:
// two concurrent requests for the last seat can both pass the check before
// either batch commits, pushing the counter past capacity. The store offers
// no cross-document transaction to close this, so the counter is treated as
// eventually consistent and RecalculateInstance repairs any drift.
func (s *bookingService) CreateBooking(ctx context.Context, userID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.create")
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		span.SetStatus(codes.Error, "missing user_id")
		return nil, domain.ErrMissingUserID
	}
	if req == nil || req.InstanceID <= 0 {
		span.SetStatus(codes.Error, "missing instance_id")
		return nil, domain.ErrMissingInstanceID
	}

	status := domain.BookingStatusPending
	if req.Status != "" {
		status = domain.BookingStatus(req.Status)
		if !status.IsValid() {
			span.SetStatus(codes.Error, "invalid status")
			return nil, domain.ErrInvalidBookingStatus
		}
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.Int64("instance_id", req.InstanceID),
		attribute.String("status", status.String()),
	)

	instance, err := s.instanceRepo.GetByID(ctx, req.InstanceID)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, instance.CourseID)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}

	if !instance.HasCapacity(course) {
		span.SetStatus(codes.Error, "instance full")
		metrics.RecordFailure(ctx, "instance_full")
		return nil, domain.ErrInstanceFull
	}

	active, err := s.bookingRepo.FindActive(ctx, userID, req.InstanceID)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}
	if len(active) > 0 {
		span.SetStatus(codes.Error, "duplicate booking")
		metrics.RecordFailure(ctx, "duplicate_booking")
		return nil, domain.ErrDuplicateBooking
	}

	bookingID := s.bookingRepo.NewID()
	booking := &domain.Booking{
		ID:         bookingID,
		InstanceID: req.InstanceID,
		UserID:     userID,
		Status:     status,
	}

	ops := []store.Op{repository.BookingAddOp(bookingID, booking)}
	if status.CountsTowardCapacity() {
		ops = append(ops, repository.InstanceBookingsOp(instance.DocID, instance.CurrentBookings+1))
	}
	if err := s.store.BatchWrite(ctx, ops); err != nil {
		telemetry.SetSpanError(ctx, err)
		metrics.RecordFailure(ctx, "store_error")
		return nil, err
	}

	// Re-fetch so the response carries the server-assigned timestamps
	created, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}

	metrics.RecordCreation(ctx, created.InstanceID, created.Status.String())
	_ = s.eventPublisher.PublishBookingCreated(ctx, created)

	return dto.FromDomain(created), nil
}

// UpdateBooking applies a status patch to a booking. Moving into or out of
// the counting set adjusts the instance counter in the same batch;
// transitions inside the set (pending to confirmed) leave it untouched.
func (s *bookingService) UpdateBooking(ctx context.Context, bookingID string, req *dto.UpdateBookingRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.update")
	defer span.End()

	if strings.TrimSpace(bookingID) == "" {
		span.SetStatus(codes.Error, "missing booking_id")
		return domain.ErrMissingBookingID
	}
	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return err
	}

	if req == nil || req.Status == nil || domain.BookingStatus(*req.Status) == booking.Status {
		// Nothing moves in or out of the counting set
		ops := []store.Op{repository.BookingStatusOp(bookingID, booking.Status)}
		if err := s.store.BatchWrite(ctx, ops); err != nil {
			telemetry.SetSpanError(ctx, err)
			return err
		}
		return nil
	}

	newStatus := domain.BookingStatus(*req.Status)
	if !newStatus.IsValid() {
		span.SetStatus(codes.Error, "invalid status")
		return domain.ErrInvalidBookingStatus
	}

	instance, err := s.instanceRepo.GetByID(ctx, booking.InstanceID)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return err
	}

	oldCounts := booking.Status.CountsTowardCapacity()
	newCounts := newStatus.CountsTowardCapacity()

	ops := []store.Op{repository.BookingStatusOp(bookingID, newStatus)}
	switch {
	case oldCounts && !newCounts:
		ops = append(ops, repository.InstanceBookingsOp(instance.DocID, flooredDecrement(instance.CurrentBookings)))
	case !oldCounts && newCounts:
		ops = append(ops, repository.InstanceBookingsOp(instance.DocID, instance.CurrentBookings+1))
	}

	if err := s.store.BatchWrite(ctx, ops); err != nil {
		telemetry.SetSpanError(ctx, err)
		return err
	}

	booking.Status = newStatus
	_ = s.eventPublisher.PublishBookingUpdated(ctx, booking)

	return nil
}

// CancelBooking cancels a booking. Rejected inside the 30-minute pre-start
// window regardless of the booking's current status.
func (s *bookingService) CancelBooking(ctx context.Context, bookingID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.cancel")
	defer span.End()

	if strings.TrimSpace(bookingID) == "" {
		span.SetStatus(codes.Error, "missing booking_id")
		return domain.ErrMissingBookingID
	}
	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return err
	}

	instance, err := s.instanceRepo.GetByID(ctx, booking.InstanceID)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return err
	}

	if instance.InCancellationWindow(s.now()) {
		span.SetStatus(codes.Error, "cancellation too late")
		metrics.RecordFailure(ctx, "cancellation_too_late")
		return domain.ErrCancellationTooLate
	}

	ops := []store.Op{repository.BookingStatusOp(bookingID, domain.BookingStatusCancelled)}
	if booking.Status.CountsTowardCapacity() {
		ops = append(ops, repository.InstanceBookingsOp(instance.DocID, flooredDecrement(instance.CurrentBookings)))
	}
	if err := s.store.BatchWrite(ctx, ops); err != nil {
		telemetry.SetSpanError(ctx, err)
		return err
	}

	metrics.RecordCancellation(ctx, booking.InstanceID)
	booking.Status = domain.BookingStatusCancelled
	_ = s.eventPublisher.PublishBookingCancelled(ctx, booking)

	return nil
}

// DeleteBooking removes a booking document. A seat-occupying booking
// releases its seat in the same batch so the counter stays reconciled.
func (s *bookingService) DeleteBooking(ctx context.Context, bookingID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.delete")
	defer span.End()

	if strings.TrimSpace(bookingID) == "" {
		span.SetStatus(codes.Error, "missing booking_id")
		return domain.ErrMissingBookingID
	}
	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return err
	}

	ops := []store.Op{repository.BookingDeleteOp(bookingID)}
	if booking.Status.CountsTowardCapacity() {
		instance, err := s.instanceRepo.GetByID(ctx, booking.InstanceID)
		if err != nil {
			telemetry.SetSpanError(ctx, err)
			return err
		}
		ops = append(ops, repository.InstanceBookingsOp(instance.DocID, flooredDecrement(instance.CurrentBookings)))
	}

	if err := s.store.BatchWrite(ctx, ops); err != nil {
		telemetry.SetSpanError(ctx, err)
		return err
	}
	return nil
}

// RecalculateInstance repairs the instance counter from the true count of
// seat-occupying bookings. Idempotent; a clean counter writes nothing.
func (s *bookingService) RecalculateInstance(ctx context.Context, instanceID int64) (*dto.RecalculateResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.recalculate_instance")
	defer span.End()

	if instanceID <= 0 {
		span.SetStatus(codes.Error, "missing instance_id")
		return nil, domain.ErrMissingInstanceID
	}
	span.SetAttributes(attribute.Int64("instance_id", instanceID))

	instance, err := s.instanceRepo.GetByID(ctx, instanceID)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}

	repaired, err := s.recalculate(ctx, instance)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}

	resp := &dto.RecalculateResponse{InstancesChecked: 1}
	if repaired {
		resp.InstancesRepaired = 1
	}
	return resp, nil
}

// RecalculateAll repairs every instance counter, writing only where the
// stored counter has drifted.
func (s *bookingService) RecalculateAll(ctx context.Context) (*dto.RecalculateResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.recalculate_all")
	defer span.End()

	instances, err := s.instanceRepo.List(ctx)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}

	resp := &dto.RecalculateResponse{InstancesChecked: len(instances)}
	for _, instance := range instances {
		repaired, err := s.recalculate(ctx, instance)
		if err != nil {
			telemetry.SetSpanError(ctx, err)
			return nil, err
		}
		if repaired {
			resp.InstancesRepaired++
		}
	}

	span.SetAttributes(
		attribute.Int("instances_checked", resp.InstancesChecked),
		attribute.Int("instances_repaired", resp.InstancesRepaired),
	)
	return resp, nil
}

func (s *bookingService) recalculate(ctx context.Context, instance *domain.ClassInstance) (bool, error) {
	counting, err := s.bookingRepo.GetCountingByInstanceID(ctx, instance.ID)
	if err != nil {
		return false, err
	}

	trueCount := int64(len(counting))
	if trueCount == instance.CurrentBookings {
		return false, nil
	}

	ops := []store.Op{repository.InstanceBookingsOp(instance.DocID, trueCount)}
	if err := s.store.BatchWrite(ctx, ops); err != nil {
		return false, err
	}

	metrics.RecordDriftRepair(ctx, instance.ID, instance.CurrentBookings-trueCount)
	return true, nil
}

// MarkPastBookingsAsAttended transitions confirmed bookings on past
// instances to attended. Counters are left alone: attended bookings keep
// their seat in the historical occupancy count, and the periodic
// recalculation owns any reconciliation beyond that.
func (s *bookingService) MarkPastBookingsAsAttended(ctx context.Context) (*dto.MarkAttendedResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.mark_attended")
	defer span.End()

	confirmed, err := s.bookingRepo.GetByStatus(ctx, domain.BookingStatusConfirmed)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}
	if len(confirmed) == 0 {
		return &dto.MarkAttendedResponse{}, nil
	}

	instanceIDs := distinctInstanceIDs(confirmed)
	instances, err := s.instanceRepo.GetByIDs(ctx, instanceIDs)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}
	byID := make(map[int64]*domain.ClassInstance, len(instances))
	for _, instance := range instances {
		byID[instance.ID] = instance
	}

	now := s.now()
	var ops []store.Op
	for _, booking := range confirmed {
		instance, ok := byID[booking.InstanceID]
		if !ok || !instance.IsPast(now) {
			continue
		}
		ops = append(ops, repository.BookingStatusOp(booking.ID, domain.BookingStatusAttended))
	}
	if len(ops) == 0 {
		return &dto.MarkAttendedResponse{}, nil
	}

	// The store caps batches at 500 ops
	for _, chunk := range chunkOps(ops, 500) {
		if err := s.store.BatchWrite(ctx, chunk); err != nil {
			telemetry.SetSpanError(ctx, err)
			return nil, err
		}
	}

	metrics.RecordAttendance(ctx, int64(len(ops)))
	span.SetAttributes(attribute.Int("bookings_marked", len(ops)))
	return &dto.MarkAttendedResponse{BookingsMarked: len(ops)}, nil
}

func flooredDecrement(n int64) int64 {
	if n <= 0 {
		return 0
	}
	return n - 1
}

func distinctInstanceIDs(bookings []*domain.Booking) []int64 {
	seen := make(map[int64]struct{}, len(bookings))
	var ids []int64
	for _, b := range bookings {
		if _, ok := seen[b.InstanceID]; ok {
			continue
		}
		seen[b.InstanceID] = struct{}{}
		ids = append(ids, b.InstanceID)
	}
	return ids
}

func chunkOps(ops []store.Op, size int) [][]store.Op {
	var chunks [][]store.Op
	for len(ops) > size {
		chunks = append(chunks, ops[:size])
		ops = ops[size:]
	}
	if len(ops) > 0 {
		chunks = append(chunks, ops)
	}
	return chunks
}
