package domain

import (
	"strings"
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusAttended  BookingStatus = "attended"
	BookingStatusNoShow    BookingStatus = "no-show"
)

// IsValid checks if the status is a valid BookingStatus
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled,
		BookingStatusCompleted, BookingStatusAttended, BookingStatusNoShow:
		return true
	}
	return false
}

// String returns the string representation of BookingStatus
func (s BookingStatus) String() string {
	return string(s)
}

// CountsTowardCapacity reports whether a booking in this status occupies a
// seat against instance capacity. Every counter mutation in the engine is
// derived from this predicate; it must not be re-declared per call site.
func (s BookingStatus) CountsTowardCapacity() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// CountingStatuses returns the statuses that occupy a seat, in the form the
// store's "in" filter expects.
func CountingStatuses() []string {
	return []string{string(BookingStatusPending), string(BookingStatusConfirmed)}
}

// Booking represents one user's claim on one class instance. The store
// document id doubles as the booking id; instances are referenced by their
// numeric catalog id.
type Booking struct {
	ID         string        `json:"id"`
	InstanceID int64         `json:"instances_id"`
	UserID     string        `json:"user_id"`
	Status     BookingStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Validate validates all booking fields
func (b *Booking) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrMissingBookingID
	}
	if strings.TrimSpace(b.UserID) == "" {
		return ErrMissingUserID
	}
	if b.InstanceID <= 0 {
		return ErrMissingInstanceID
	}
	if !b.Status.IsValid() {
		return ErrInvalidBookingStatus
	}
	return nil
}

// IsActive checks if the booking currently occupies a seat
func (b *Booking) IsActive() bool {
	return b.Status.CountsTowardCapacity()
}

// IsCancelled checks if the booking is in cancelled status
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// BelongsToUser checks if the booking belongs to the specified user
func (b *Booking) BelongsToUser(userID string) bool {
	return b.UserID == userID
}
