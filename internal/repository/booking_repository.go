package repository

import (
	"context"
	"errors"

	"github.com/yogaflow/studio-booking/internal/domain"
	"github.com/yogaflow/studio-booking/internal/store"
)

// BookingRepository reads bookings from the document store. All writes go
// through batch ops composed by the service layer so counter updates commit
// atomically with the booking mutation.
type BookingRepository interface {
	GetByID(ctx context.Context, bookingID string) (*domain.Booking, error)
	GetByUserID(ctx context.Context, userID string) ([]*domain.Booking, error)
	GetByInstanceID(ctx context.Context, instanceID int64) ([]*domain.Booking, error)
	// GetCountingByInstanceID returns the bookings that occupy a seat on the
	// instance. Its length is the ground truth for the instance counter.
	GetCountingByInstanceID(ctx context.Context, instanceID int64) ([]*domain.Booking, error)
	// FindActive returns the user's seat-occupying bookings on the instance
	FindActive(ctx context.Context, userID string, instanceID int64) ([]*domain.Booking, error)
	GetByStatus(ctx context.Context, status domain.BookingStatus) ([]*domain.Booking, error)
	// NewID allocates a booking id ahead of the batch write
	NewID() string
}

type storeBookingRepository struct {
	store store.Store
}

// NewBookingRepository creates a booking repository backed by the store
func NewBookingRepository(s store.Store) BookingRepository {
	return &storeBookingRepository{store: s}
}

func (r *storeBookingRepository) GetByID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	doc, err := r.store.GetDocument(ctx, store.CollectionBookings, bookingID)
	if err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return decodeBooking(doc), nil
}

func (r *storeBookingRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Booking, error) {
	docs, err := r.store.QueryDocuments(ctx, store.CollectionBookings, store.Query{
		Where:   []store.Where{{Field: fieldUserID, Op: "==", Value: userID}},
		OrderBy: []store.Order{{Field: fieldCreatedAt, Desc: true}},
	})
	if err != nil {
		return nil, err
	}
	return decodeBookings(docs), nil
}

func (r *storeBookingRepository) GetByInstanceID(ctx context.Context, instanceID int64) ([]*domain.Booking, error) {
	docs, err := r.store.QueryDocuments(ctx, store.CollectionBookings, store.Query{
		Where: []store.Where{{Field: fieldInstanceID, Op: "==", Value: instanceID}},
	})
	if err != nil {
		return nil, err
	}
	return decodeBookings(docs), nil
}

func (r *storeBookingRepository) GetCountingByInstanceID(ctx context.Context, instanceID int64) ([]*domain.Booking, error) {
	docs, err := r.store.QueryDocuments(ctx, store.CollectionBookings, store.Query{
		Where: []store.Where{
			{Field: fieldInstanceID, Op: "==", Value: instanceID},
			{Field: fieldStatus, Op: "in", Value: domain.CountingStatuses()},
		},
	})
	if err != nil {
		return nil, err
	}
	return decodeBookings(docs), nil
}

func (r *storeBookingRepository) FindActive(ctx context.Context, userID string, instanceID int64) ([]*domain.Booking, error) {
	docs, err := r.store.QueryDocuments(ctx, store.CollectionBookings, store.Query{
		Where: []store.Where{
			{Field: fieldUserID, Op: "==", Value: userID},
			{Field: fieldInstanceID, Op: "==", Value: instanceID},
			{Field: fieldStatus, Op: "in", Value: domain.CountingStatuses()},
		},
	})
	if err != nil {
		return nil, err
	}
	return decodeBookings(docs), nil
}

func (r *storeBookingRepository) GetByStatus(ctx context.Context, status domain.BookingStatus) ([]*domain.Booking, error) {
	docs, err := r.store.QueryDocuments(ctx, store.CollectionBookings, store.Query{
		Where: []store.Where{{Field: fieldStatus, Op: "==", Value: status.String()}},
	})
	if err != nil {
		return nil, err
	}
	return decodeBookings(docs), nil
}

func (r *storeBookingRepository) NewID() string {
	return r.store.NewDocID(store.CollectionBookings)
}

func decodeBookings(docs []*store.Document) []*domain.Booking {
	bookings := make([]*domain.Booking, 0, len(docs))
	for _, doc := range docs {
		bookings = append(bookings, decodeBooking(doc))
	}
	return bookings
}

// BookingAddOp builds the batch op that creates a booking document
func BookingAddOp(bookingID string, b *domain.Booking) store.Op {
	return store.Op{
		Kind:       store.OpAdd,
		Collection: store.CollectionBookings,
		DocID:      bookingID,
		Data:       encodeBooking(b),
	}
}

// BookingStatusOp builds the batch op that moves a booking to a new status
func BookingStatusOp(bookingID string, status domain.BookingStatus) store.Op {
	return store.Op{
		Kind:       store.OpUpdate,
		Collection: store.CollectionBookings,
		DocID:      bookingID,
		Data:       map[string]any{fieldStatus: status.String()},
	}
}

// BookingDeleteOp builds the batch op that removes a booking document
func BookingDeleteOp(bookingID string) store.Op {
	return store.Op{
		Kind:       store.OpDelete,
		Collection: store.CollectionBookings,
		DocID:      bookingID,
	}
}
