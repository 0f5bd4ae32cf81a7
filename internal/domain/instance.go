package domain

import (
	"time"
)

// ClassStatus represents the status of a class instance
type ClassStatus string

const (
	ClassStatusScheduled  ClassStatus = "scheduled"
	ClassStatusInProgress ClassStatus = "in-progress"
	ClassStatusCompleted  ClassStatus = "completed"
	ClassStatusCancelled  ClassStatus = "cancelled"
	ClassStatusFull       ClassStatus = "full"
	ClassStatusWaitlist   ClassStatus = "waitlist"
)

// IsValid checks if the status is a valid ClassStatus
func (s ClassStatus) IsValid() bool {
	switch s {
	case ClassStatusScheduled, ClassStatusInProgress, ClassStatusCompleted,
		ClassStatusCancelled, ClassStatusFull, ClassStatusWaitlist:
		return true
	}
	return false
}

// Time-threshold policy shared by the engine and the booking screens.
const (
	// BookingCloseAfterStart is how long after start a class stays bookable.
	BookingCloseAfterStart = 2 * time.Hour
	// CancellationCutoff is how close to start cancellation is still allowed.
	CancellationCutoff = 30 * time.Minute
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ClassInstance represents one scheduled occurrence of a Course. The
// CurrentBookings counter is denormalized; the booking engine is its sole
// writer and keeps it equal to the number of counting-status bookings.
type ClassInstance struct {
	ID              int64       `json:"id"`
	DocID           string      `json:"-"`
	CourseID        int64       `json:"course_id"`
	Instructor      string      `json:"instructor"`
	Date            string      `json:"date"` // YYYY-MM-DD
	Time            string      `json:"time"` // HH:MM local clock time
	CurrentBookings int64       `json:"current_bookings"`
	Status          ClassStatus `json:"status"`
	Active          bool        `json:"active"`
	Valid           bool        `json:"valid"`
}

// StartTime combines the instance's calendar date and local clock time.
func (i *ClassInstance) StartTime() (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout+" "+timeLayout, i.Date+" "+i.Time, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidSchedule
	}
	return t, nil
}

// IsPast reports whether the instance started before now.
func (i *ClassInstance) IsPast(now time.Time) bool {
	start, err := i.StartTime()
	if err != nil {
		return false
	}
	return start.Before(now)
}

// IsBookingClosed reports whether the booking window has closed: bookings
// are disabled once now is more than two hours past the scheduled start.
func (i *ClassInstance) IsBookingClosed(now time.Time) bool {
	start, err := i.StartTime()
	if err != nil {
		return false
	}
	return now.After(start.Add(BookingCloseAfterStart))
}

// InCancellationWindow reports whether now is inside the 30-minute
// pre-start window during which cancellation is rejected.
func (i *ClassInstance) InCancellationWindow(now time.Time) bool {
	start, err := i.StartTime()
	if err != nil {
		return false
	}
	return now.After(start.Add(-CancellationCutoff))
}

// HasCapacity reports whether the instance has a free seat against the
// course ceiling. Read-then-decide only; see the engine's concurrency notes.
func (i *ClassInstance) HasCapacity(course *Course) bool {
	return i.CurrentBookings < course.Capacity
}
