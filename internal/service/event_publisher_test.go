package service

import (
	"context"
	"testing"

	"github.com/yogaflow/studio-booking/internal/domain"
)

func TestNoOpEventPublisher(t *testing.T) {
	publisher := NewNoOpEventPublisher()
	ctx := context.Background()
	booking := &domain.Booking{
		ID:         "booking-123",
		UserID:     "user-123",
		InstanceID: 1,
		Status:     domain.BookingStatusPending,
	}

	if err := publisher.PublishBookingCreated(ctx, booking); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if err := publisher.PublishBookingUpdated(ctx, booking); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if err := publisher.PublishBookingCancelled(ctx, booking); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if err := publisher.Close(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestNewKafkaEventPublisher_ConfigValidation(t *testing.T) {
	ctx := context.Background()

	if _, err := NewKafkaEventPublisher(ctx, nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewKafkaEventPublisher(ctx, &EventPublisherConfig{}); err == nil {
		t.Error("expected error for empty brokers")
	}
}

func TestBookingEvent(t *testing.T) {
	booking := &domain.Booking{
		ID:         "booking-123",
		UserID:     "user-123",
		InstanceID: 42,
		Status:     domain.BookingStatusConfirmed,
	}

	event := domain.NewBookingEvent(domain.BookingEventCreated, booking, "event-id-123")

	if event.EventID != "event-id-123" {
		t.Errorf("expected event ID 'event-id-123', got %s", event.EventID)
	}
	if event.EventType != domain.BookingEventCreated {
		t.Errorf("expected event type %s, got %s", domain.BookingEventCreated, event.EventType)
	}
	if event.BookingID != booking.ID {
		t.Errorf("expected booking ID %s, got %s", booking.ID, event.BookingID)
	}
	if event.InstanceID != booking.InstanceID {
		t.Errorf("expected instance ID %d, got %d", booking.InstanceID, event.InstanceID)
	}
	if event.OccurredAt.IsZero() {
		t.Error("expected occurred_at to be set")
	}

	// Events for one booking share a partition key
	if event.Key() != booking.ID {
		t.Errorf("expected key %s, got %s", booking.ID, event.Key())
	}

	if string(domain.BookingEventCreated) != "booking.created" {
		t.Errorf("expected 'booking.created', got %s", domain.BookingEventCreated)
	}
	if string(domain.BookingEventCancelled) != "booking.cancelled" {
		t.Errorf("expected 'booking.cancelled', got %s", domain.BookingEventCancelled)
	}
}
