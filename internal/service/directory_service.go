package service

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yogaflow/studio-booking/internal/domain"
	"github.com/yogaflow/studio-booking/internal/dto"
	"github.com/yogaflow/studio-booking/internal/repository"
	"github.com/yogaflow/studio-booking/pkg/telemetry"
)

// DirectoryService serves read-only booking lookups, including joined
// views that batch instance and course fetches instead of reading once
// per booking.
type DirectoryService interface {
	GetBooking(ctx context.Context, bookingID string) (*dto.BookingResponse, error)
	GetBookingsByUser(ctx context.Context, userID string) ([]*dto.BookingResponse, error)
	GetBookingsByInstance(ctx context.Context, instanceID int64) ([]*dto.BookingResponse, error)
	GetBookingWithDetails(ctx context.Context, bookingID string) (*dto.BookingWithDetails, error)
	GetUserBookingsWithDetails(ctx context.Context, userID string) ([]*dto.BookingWithDetails, error)
}

type directoryService struct {
	bookingRepo  repository.BookingRepository
	instanceRepo repository.InstanceRepository
	courseRepo   repository.CourseRepository
}

// NewDirectoryService creates a new directory service
func NewDirectoryService(
	bookingRepo repository.BookingRepository,
	instanceRepo repository.InstanceRepository,
	courseRepo repository.CourseRepository,
) DirectoryService {
	return &directoryService{
		bookingRepo:  bookingRepo,
		instanceRepo: instanceRepo,
		courseRepo:   courseRepo,
	}
}

func (s *directoryService) GetBooking(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.directory.get_booking")
	defer span.End()

	if strings.TrimSpace(bookingID) == "" {
		span.SetStatus(codes.Error, "missing booking_id")
		return nil, domain.ErrMissingBookingID
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}
	return dto.FromDomain(booking), nil
}

// GetBookingsByUser returns the user's bookings, newest first
func (s *directoryService) GetBookingsByUser(ctx context.Context, userID string) ([]*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.directory.get_user_bookings")
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		span.SetStatus(codes.Error, "missing user_id")
		return nil, domain.ErrMissingUserID
	}
	span.SetAttributes(attribute.String("user_id", userID))

	bookings, err := s.bookingRepo.GetByUserID(ctx, userID)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}
	return toResponses(bookings), nil
}

func (s *directoryService) GetBookingsByInstance(ctx context.Context, instanceID int64) ([]*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.directory.get_instance_bookings")
	defer span.End()

	if instanceID <= 0 {
		span.SetStatus(codes.Error, "missing instance_id")
		return nil, domain.ErrMissingInstanceID
	}
	span.SetAttributes(attribute.Int64("instance_id", instanceID))

	bookings, err := s.bookingRepo.GetByInstanceID(ctx, instanceID)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}
	return toResponses(bookings), nil
}

// GetBookingWithDetails returns one booking joined with its instance and
// course. A missing instance or course leaves the summary nil rather than
// failing the lookup.
func (s *directoryService) GetBookingWithDetails(ctx context.Context, bookingID string) (*dto.BookingWithDetails, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.directory.get_booking_details")
	defer span.End()

	if strings.TrimSpace(bookingID) == "" {
		span.SetStatus(codes.Error, "missing booking_id")
		return nil, domain.ErrMissingBookingID
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}

	detail := &dto.BookingWithDetails{BookingResponse: *dto.FromDomain(booking)}

	instance, err := s.instanceRepo.GetByID(ctx, booking.InstanceID)
	if err != nil {
		if domain.IsNotFoundError(err) {
			return detail, nil
		}
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}
	detail.Instance = dto.InstanceFromDomain(instance)

	course, err := s.courseRepo.GetByID(ctx, instance.CourseID)
	if err != nil {
		if domain.IsNotFoundError(err) {
			return detail, nil
		}
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}
	detail.Course = dto.CourseFromDomain(course)

	return detail, nil
}

// GetUserBookingsWithDetails joins the user's bookings with their instances
// and courses using two "in" queries over the distinct referenced ids,
// then assembles from in-memory maps.
func (s *directoryService) GetUserBookingsWithDetails(ctx context.Context, userID string) ([]*dto.BookingWithDetails, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.directory.get_user_booking_details")
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		span.SetStatus(codes.Error, "missing user_id")
		return nil, domain.ErrMissingUserID
	}
	span.SetAttributes(attribute.String("user_id", userID))

	bookings, err := s.bookingRepo.GetByUserID(ctx, userID)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}
	if len(bookings) == 0 {
		return []*dto.BookingWithDetails{}, nil
	}

	instanceIDs := distinctInstanceIDs(bookings)
	instances, err := s.instanceRepo.GetByIDs(ctx, instanceIDs)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}
	instanceByID := make(map[int64]*domain.ClassInstance, len(instances))
	courseIDSet := make(map[int64]struct{}, len(instances))
	var courseIDs []int64
	for _, instance := range instances {
		instanceByID[instance.ID] = instance
		if _, ok := courseIDSet[instance.CourseID]; !ok {
			courseIDSet[instance.CourseID] = struct{}{}
			courseIDs = append(courseIDs, instance.CourseID)
		}
	}

	courses, err := s.courseRepo.GetByIDs(ctx, courseIDs)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}
	courseByID := make(map[int64]*domain.Course, len(courses))
	for _, course := range courses {
		courseByID[course.ID] = course
	}

	details := make([]*dto.BookingWithDetails, 0, len(bookings))
	for _, booking := range bookings {
		detail := &dto.BookingWithDetails{BookingResponse: *dto.FromDomain(booking)}
		if instance, ok := instanceByID[booking.InstanceID]; ok {
			detail.Instance = dto.InstanceFromDomain(instance)
			if course, ok := courseByID[instance.CourseID]; ok {
				detail.Course = dto.CourseFromDomain(course)
			}
		}
		details = append(details, detail)
	}
	return details, nil
}

func toResponses(bookings []*domain.Booking) []*dto.BookingResponse {
	responses := make([]*dto.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		responses = append(responses, dto.FromDomain(b))
	}
	return responses
}
