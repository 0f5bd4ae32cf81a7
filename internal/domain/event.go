package domain

import "time"

// BookingEventType identifies a booking lifecycle event
type BookingEventType string

const (
	BookingEventCreated   BookingEventType = "booking.created"
	BookingEventUpdated   BookingEventType = "booking.updated"
	BookingEventCancelled BookingEventType = "booking.cancelled"
	BookingEventAttended  BookingEventType = "booking.attended"
)

// BookingEvent is the payload published to the event stream on booking
// lifecycle transitions. Consumers are downstream only; the engine never
// reads these back.
type BookingEvent struct {
	EventID    string           `json:"event_id"`
	EventType  BookingEventType `json:"event_type"`
	BookingID  string           `json:"booking_id"`
	UserID     string           `json:"user_id"`
	InstanceID int64            `json:"instance_id"`
	Status     BookingStatus    `json:"status"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// NewBookingEvent builds an event from a booking snapshot
func NewBookingEvent(eventType BookingEventType, booking *Booking, eventID string) *BookingEvent {
	return &BookingEvent{
		EventID:    eventID,
		EventType:  eventType,
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		InstanceID: booking.InstanceID,
		Status:     booking.Status,
		OccurredAt: time.Now().UTC(),
	}
}

// Key returns the partition key: all events for one booking stay ordered
func (e *BookingEvent) Key() string {
	return e.BookingID
}
