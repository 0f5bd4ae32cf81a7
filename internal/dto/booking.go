package dto

import (
	"time"

	"github.com/yogaflow/studio-booking/internal/domain"
)

// CreateBookingRequest represents a request to book a class instance.
// Status is optional and defaults to pending.
type CreateBookingRequest struct {
	InstanceID int64  `json:"instance_id" binding:"required"`
	Status     string `json:"status,omitempty"`
}

// UpdateBookingRequest represents a partial booking update. Only the
// status can change; nil means leave it untouched.
type UpdateBookingRequest struct {
	Status *string `json:"status"`
}

// BookingResponse represents a booking in API responses
type BookingResponse struct {
	ID         string    `json:"id"`
	InstanceID int64     `json:"instance_id"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// InstanceSummary is the class instance snapshot embedded in detail views
type InstanceSummary struct {
	ID              int64  `json:"id"`
	CourseID        int64  `json:"course_id"`
	Instructor      string `json:"instructor"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	CurrentBookings int64  `json:"current_bookings"`
	Status          string `json:"status"`
}

// CourseSummary is the course snapshot embedded in detail views
type CourseSummary struct {
	ID              int64   `json:"id"`
	Name            string  `json:"course_name"`
	Type            string  `json:"course_type"`
	DurationMinutes int64   `json:"duration_minutes"`
	Capacity        int64   `json:"capacity"`
	PricePerClass   float64 `json:"price_per_class"`
	Instructor      string  `json:"instructor"`
	StudioRoom      string  `json:"studio_room"`
}

// BookingWithDetails joins a booking with its class instance and course
type BookingWithDetails struct {
	BookingResponse
	Instance *InstanceSummary `json:"instance,omitempty"`
	Course   *CourseSummary   `json:"course,omitempty"`
}

// RecalculateResponse reports the outcome of a counter reconciliation
type RecalculateResponse struct {
	InstancesChecked  int `json:"instances_checked"`
	InstancesRepaired int `json:"instances_repaired"`
}

// MarkAttendedResponse reports the outcome of the attendance sweep
type MarkAttendedResponse struct {
	BookingsMarked int `json:"bookings_marked"`
}

// FromDomain converts a domain Booking to a BookingResponse
func FromDomain(b *domain.Booking) *BookingResponse {
	return &BookingResponse{
		ID:         b.ID,
		InstanceID: b.InstanceID,
		UserID:     b.UserID,
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

// InstanceFromDomain converts a domain ClassInstance to its summary form
func InstanceFromDomain(i *domain.ClassInstance) *InstanceSummary {
	if i == nil {
		return nil
	}
	return &InstanceSummary{
		ID:              i.ID,
		CourseID:        i.CourseID,
		Instructor:      i.Instructor,
		Date:            i.Date,
		Time:            i.Time,
		CurrentBookings: i.CurrentBookings,
		Status:          string(i.Status),
	}
}

// CourseFromDomain converts a domain Course to its summary form
func CourseFromDomain(c *domain.Course) *CourseSummary {
	if c == nil {
		return nil
	}
	return &CourseSummary{
		ID:              c.ID,
		Name:            c.Name,
		Type:            c.Type,
		DurationMinutes: c.DurationMinutes,
		Capacity:        c.Capacity,
		PricePerClass:   c.PricePerClass,
		Instructor:      c.Instructor,
		StudioRoom:      c.StudioRoom,
	}
}
