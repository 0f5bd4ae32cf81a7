package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Missing-field errors
	ErrMissingUserID     = errors.New("user id is required")
	ErrMissingInstanceID = errors.New("instance id is required")
	ErrMissingBookingID  = errors.New("booking id is required")

	// Lookup errors
	ErrBookingNotFound  = errors.New("booking not found")
	ErrInstanceNotFound = errors.New("class instance not found")
	ErrCourseNotFound   = errors.New("course not found")

	// Capacity and booking-rule errors
	ErrInstanceFull        = errors.New("class is at full capacity")
	ErrDuplicateBooking    = errors.New("an active booking already exists for this class")
	ErrCancellationTooLate = errors.New("cannot cancel within 30 minutes of class start")

	// Validation errors
	ErrInvalidBookingStatus  = errors.New("invalid booking status")
	ErrInvalidInstanceStatus = errors.New("invalid instance status")
	ErrInvalidCapacity       = errors.New("capacity must be greater than zero")
	ErrInvalidSchedule       = errors.New("invalid instance date or time")
)

// StoreError wraps a document store failure with the adapter's original
// code and message. Adapter errors never cross the service boundary raw.
type StoreError struct {
	Code    string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("store error %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("store error %s", e.Code)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err as a StoreError with the given adapter code.
func NewStoreError(code string, err error) *StoreError {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &StoreError{Code: code, Message: msg, Err: err}
}

// IsStoreError checks if the error originated in the document store adapter.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrInstanceNotFound) ||
		errors.Is(err, ErrCourseNotFound)
}

// IsMissingFieldError checks if the error is a missing required field error
func IsMissingFieldError(err error) bool {
	return errors.Is(err, ErrMissingUserID) ||
		errors.Is(err, ErrMissingInstanceID) ||
		errors.Is(err, ErrMissingBookingID)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return IsMissingFieldError(err) ||
		errors.Is(err, ErrInvalidBookingStatus) ||
		errors.Is(err, ErrInvalidInstanceStatus) ||
		errors.Is(err, ErrInvalidCapacity) ||
		errors.Is(err, ErrInvalidSchedule)
}

// IsConflictError checks if the error is an expected business conflict
// rather than a system fault. Screens surface these distinctly.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrInstanceFull) ||
		errors.Is(err, ErrDuplicateBooking)
}
