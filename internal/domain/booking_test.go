package domain

import (
	"errors"
	"testing"
)

func TestBookingStatus_CountsTowardCapacity(t *testing.T) {
	tests := []struct {
		status BookingStatus
		want   bool
	}{
		{BookingStatusPending, true},
		{BookingStatusConfirmed, true},
		{BookingStatusCancelled, false},
		{BookingStatusCompleted, false},
		{BookingStatusAttended, false},
		{BookingStatusNoShow, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.CountsTowardCapacity(); got != tt.want {
				t.Errorf("CountsTowardCapacity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBookingStatus_IsValid(t *testing.T) {
	for _, s := range []BookingStatus{
		BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled,
		BookingStatusCompleted, BookingStatusAttended, BookingStatusNoShow,
	} {
		if !s.IsValid() {
			t.Errorf("IsValid() = false for %q", s)
		}
	}
	for _, s := range []BookingStatus{"", "unknown", "PENDING"} {
		if s.IsValid() {
			t.Errorf("IsValid() = true for %q", s)
		}
	}
}

func TestCountingStatuses(t *testing.T) {
	got := CountingStatuses()
	if len(got) != 2 || got[0] != "pending" || got[1] != "confirmed" {
		t.Errorf("CountingStatuses() = %v", got)
	}
}

func TestBooking_Validate(t *testing.T) {
	valid := func() *Booking {
		return &Booking{
			ID:         "booking-001",
			InstanceID: 42,
			UserID:     "user-001",
			Status:     BookingStatusPending,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Booking)
		wantErr error
	}{
		{"valid booking", func(b *Booking) {}, nil},
		{"missing id", func(b *Booking) { b.ID = "  " }, ErrMissingBookingID},
		{"missing user id", func(b *Booking) { b.UserID = "" }, ErrMissingUserID},
		{"missing instance id", func(b *Booking) { b.InstanceID = 0 }, ErrMissingInstanceID},
		{"invalid status", func(b *Booking) { b.Status = "reserved" }, ErrInvalidBookingStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid()
			tt.mutate(b)
			if err := b.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestErrorClassifiers(t *testing.T) {
	if !IsMissingFieldError(ErrMissingUserID) {
		t.Error("ErrMissingUserID should be a missing-field error")
	}
	if !IsValidationError(ErrInvalidBookingStatus) {
		t.Error("ErrInvalidBookingStatus should be a validation error")
	}
	if !IsNotFoundError(ErrInstanceNotFound) {
		t.Error("ErrInstanceNotFound should be a not-found error")
	}
	if !IsConflictError(ErrInstanceFull) || !IsConflictError(ErrDuplicateBooking) {
		t.Error("capacity conflicts should be conflict errors")
	}
	if IsConflictError(ErrBookingNotFound) {
		t.Error("not-found is not a conflict")
	}

	wrapped := NewStoreError("BATCH_WRITE_ERROR", errors.New("deadline exceeded"))
	if !IsStoreError(wrapped) {
		t.Error("StoreError should classify as store error")
	}
	if IsStoreError(ErrBookingNotFound) {
		t.Error("domain error is not a store error")
	}
}
