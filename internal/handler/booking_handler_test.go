package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yogaflow/studio-booking/internal/domain"
	"github.com/yogaflow/studio-booking/internal/dto"
)

// MockBookingService is a mock implementation of BookingService for testing
type MockBookingService struct {
	CreateBookingFunc              func(ctx context.Context, userID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	UpdateBookingFunc              func(ctx context.Context, bookingID string, req *dto.UpdateBookingRequest) error
	CancelBookingFunc              func(ctx context.Context, bookingID string) error
	DeleteBookingFunc              func(ctx context.Context, bookingID string) error
	RecalculateInstanceFunc        func(ctx context.Context, instanceID int64) (*dto.RecalculateResponse, error)
	RecalculateAllFunc             func(ctx context.Context) (*dto.RecalculateResponse, error)
	MarkPastBookingsAsAttendedFunc func(ctx context.Context) (*dto.MarkAttendedResponse, error)
}

func (m *MockBookingService) CreateBooking(ctx context.Context, userID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	if m.CreateBookingFunc != nil {
		return m.CreateBookingFunc(ctx, userID, req)
	}
	return nil, nil
}

func (m *MockBookingService) UpdateBooking(ctx context.Context, bookingID string, req *dto.UpdateBookingRequest) error {
	if m.UpdateBookingFunc != nil {
		return m.UpdateBookingFunc(ctx, bookingID, req)
	}
	return nil
}

func (m *MockBookingService) CancelBooking(ctx context.Context, bookingID string) error {
	if m.CancelBookingFunc != nil {
		return m.CancelBookingFunc(ctx, bookingID)
	}
	return nil
}

func (m *MockBookingService) DeleteBooking(ctx context.Context, bookingID string) error {
	if m.DeleteBookingFunc != nil {
		return m.DeleteBookingFunc(ctx, bookingID)
	}
	return nil
}

func (m *MockBookingService) RecalculateInstance(ctx context.Context, instanceID int64) (*dto.RecalculateResponse, error) {
	if m.RecalculateInstanceFunc != nil {
		return m.RecalculateInstanceFunc(ctx, instanceID)
	}
	return &dto.RecalculateResponse{}, nil
}

func (m *MockBookingService) RecalculateAll(ctx context.Context) (*dto.RecalculateResponse, error) {
	if m.RecalculateAllFunc != nil {
		return m.RecalculateAllFunc(ctx)
	}
	return &dto.RecalculateResponse{}, nil
}

func (m *MockBookingService) MarkPastBookingsAsAttended(ctx context.Context) (*dto.MarkAttendedResponse, error) {
	if m.MarkPastBookingsAsAttendedFunc != nil {
		return m.MarkPastBookingsAsAttendedFunc(ctx)
	}
	return &dto.MarkAttendedResponse{}, nil
}

// MockDirectoryService is a mock implementation of DirectoryService for testing
type MockDirectoryService struct {
	GetBookingFunc                 func(ctx context.Context, bookingID string) (*dto.BookingResponse, error)
	GetBookingsByUserFunc          func(ctx context.Context, userID string) ([]*dto.BookingResponse, error)
	GetBookingsByInstanceFunc      func(ctx context.Context, instanceID int64) ([]*dto.BookingResponse, error)
	GetBookingWithDetailsFunc      func(ctx context.Context, bookingID string) (*dto.BookingWithDetails, error)
	GetUserBookingsWithDetailsFunc func(ctx context.Context, userID string) ([]*dto.BookingWithDetails, error)
}

func (m *MockDirectoryService) GetBooking(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
	if m.GetBookingFunc != nil {
		return m.GetBookingFunc(ctx, bookingID)
	}
	return nil, domain.ErrBookingNotFound
}

func (m *MockDirectoryService) GetBookingsByUser(ctx context.Context, userID string) ([]*dto.BookingResponse, error) {
	if m.GetBookingsByUserFunc != nil {
		return m.GetBookingsByUserFunc(ctx, userID)
	}
	return []*dto.BookingResponse{}, nil
}

func (m *MockDirectoryService) GetBookingsByInstance(ctx context.Context, instanceID int64) ([]*dto.BookingResponse, error) {
	if m.GetBookingsByInstanceFunc != nil {
		return m.GetBookingsByInstanceFunc(ctx, instanceID)
	}
	return []*dto.BookingResponse{}, nil
}

func (m *MockDirectoryService) GetBookingWithDetails(ctx context.Context, bookingID string) (*dto.BookingWithDetails, error) {
	if m.GetBookingWithDetailsFunc != nil {
		return m.GetBookingWithDetailsFunc(ctx, bookingID)
	}
	return nil, domain.ErrBookingNotFound
}

func (m *MockDirectoryService) GetUserBookingsWithDetails(ctx context.Context, userID string) ([]*dto.BookingWithDetails, error) {
	if m.GetUserBookingsWithDetailsFunc != nil {
		return m.GetUserBookingsWithDetailsFunc(ctx, userID)
	}
	return []*dto.BookingWithDetails{}, nil
}

func setupTestRouter(bookingService *MockBookingService, directoryService *MockDirectoryService, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	if userID != "" {
		router.Use(func(c *gin.Context) {
			c.Set("user_id", userID)
			c.Next()
		})
	}

	h := NewBookingHandler(bookingService, directoryService)
	bookings := router.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id", h.UpdateBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
	}
	return router
}

func ownedBooking(id, userID string) *dto.BookingResponse {
	return &dto.BookingResponse{ID: id, UserID: userID, InstanceID: 1, Status: "confirmed"}
}

func TestCreateBookingHandler(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		body       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "created",
			userID:     "user-001",
			body:       `{"instance_id": 1}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "unauthorized without user",
			userID:     "",
			body:       `{"instance_id": 1}`,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "malformed body",
			userID:     "user-001",
			body:       `{"instance_id": "one"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "instance full",
			userID:     "user-001",
			body:       `{"instance_id": 1}`,
			serviceErr: domain.ErrInstanceFull,
			wantStatus: http.StatusConflict,
			wantCode:   "INSTANCE_FULL",
		},
		{
			name:       "duplicate booking",
			userID:     "user-001",
			body:       `{"instance_id": 1}`,
			serviceErr: domain.ErrDuplicateBooking,
			wantStatus: http.StatusConflict,
			wantCode:   "DUPLICATE_BOOKING",
		},
		{
			name:       "instance not found",
			userID:     "user-001",
			body:       `{"instance_id": 99}`,
			serviceErr: domain.ErrInstanceNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "INSTANCE_NOT_FOUND",
		},
		{
			name:       "invalid status",
			userID:     "user-001",
			body:       `{"instance_id": 1, "status": "reserved"}`,
			serviceErr: domain.ErrInvalidBookingStatus,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "INVALID_STATUS",
		},
		{
			name:       "store failure",
			userID:     "user-001",
			body:       `{"instance_id": 1}`,
			serviceErr: domain.NewStoreError("BATCH_WRITE_ERROR", nil),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "STORE_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockBookingService{
				CreateBookingFunc: func(ctx context.Context, userID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return ownedBooking("b1", userID), nil
				},
			}
			router := setupTestRouter(svc, &MockDirectoryService{}, tt.userID)

			req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantCode != "" {
				var resp dto.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to decode error body: %v", err)
				}
				if resp.Code != tt.wantCode {
					t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
				}
			}
		})
	}
}

func TestGetBookingHandler(t *testing.T) {
	dir := &MockDirectoryService{
		GetBookingFunc: func(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
			if bookingID == "b1" {
				return ownedBooking("b1", "user-001"), nil
			}
			return nil, domain.ErrBookingNotFound
		},
	}
	router := setupTestRouter(&MockBookingService{}, dir, "user-001")

	t.Run("owner sees the booking", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bookings/b1", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	})

	t.Run("missing booking", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bookings/nope", nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})

	t.Run("other user's booking hidden as not found", func(t *testing.T) {
		other := setupTestRouter(&MockBookingService{}, dir, "user-002")
		w := httptest.NewRecorder()
		other.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bookings/b1", nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})
}

func TestListBookingsHandler(t *testing.T) {
	dir := &MockDirectoryService{
		GetBookingsByUserFunc: func(ctx context.Context, userID string) ([]*dto.BookingResponse, error) {
			return []*dto.BookingResponse{ownedBooking("b1", userID), ownedBooking("b2", userID)}, nil
		},
		GetUserBookingsWithDetailsFunc: func(ctx context.Context, userID string) ([]*dto.BookingWithDetails, error) {
			return []*dto.BookingWithDetails{
				{BookingResponse: *ownedBooking("b1", userID), Instance: &dto.InstanceSummary{ID: 1}},
			}, nil
		},
	}
	router := setupTestRouter(&MockBookingService{}, dir, "user-001")

	t.Run("plain list", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bookings", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var resp struct {
			Bookings []*dto.BookingResponse `json:"bookings"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if len(resp.Bookings) != 2 {
			t.Errorf("got %d bookings, want 2", len(resp.Bookings))
		}
	})

	t.Run("detailed list", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bookings?details=true", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var resp struct {
			Bookings []*dto.BookingWithDetails `json:"bookings"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if len(resp.Bookings) != 1 || resp.Bookings[0].Instance == nil {
			t.Errorf("detailed list missing instance join: %+v", resp.Bookings)
		}
	})

	t.Run("unauthorized", func(t *testing.T) {
		anon := setupTestRouter(&MockBookingService{}, dir, "")
		w := httptest.NewRecorder()
		anon.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bookings", nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})
}

func TestCancelBookingHandler(t *testing.T) {
	dir := &MockDirectoryService{
		GetBookingFunc: func(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
			return ownedBooking(bookingID, "user-001"), nil
		},
	}

	t.Run("cancelled", func(t *testing.T) {
		router := setupTestRouter(&MockBookingService{}, dir, "user-001")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bookings/b1/cancel", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
		}
	})

	t.Run("too late maps to conflict", func(t *testing.T) {
		svc := &MockBookingService{
			CancelBookingFunc: func(ctx context.Context, bookingID string) error {
				return domain.ErrCancellationTooLate
			},
		}
		router := setupTestRouter(svc, dir, "user-001")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bookings/b1/cancel", nil))
		if w.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", w.Code)
		}
		var resp dto.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode error body: %v", err)
		}
		if resp.Code != "CANCELLATION_TOO_LATE" {
			t.Errorf("code = %q, want CANCELLATION_TOO_LATE", resp.Code)
		}
	})

	t.Run("not the owner", func(t *testing.T) {
		router := setupTestRouter(&MockBookingService{}, dir, "user-999")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bookings/b1/cancel", nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})
}

func TestUpdateBookingHandler(t *testing.T) {
	dir := &MockDirectoryService{
		GetBookingFunc: func(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
			return ownedBooking(bookingID, "user-001"), nil
		},
	}

	t.Run("updated", func(t *testing.T) {
		var gotStatus *string
		svc := &MockBookingService{
			UpdateBookingFunc: func(ctx context.Context, bookingID string, req *dto.UpdateBookingRequest) error {
				gotStatus = req.Status
				return nil
			},
		}
		router := setupTestRouter(svc, dir, "user-001")
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/bookings/b1", bytes.NewBufferString(`{"status": "confirmed"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
		}
		if gotStatus == nil || *gotStatus != "confirmed" {
			t.Errorf("service saw status %v, want confirmed", gotStatus)
		}
	})

	t.Run("unauthorized", func(t *testing.T) {
		router := setupTestRouter(&MockBookingService{}, dir, "")
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/bookings/b1", bytes.NewBufferString(`{"status": "confirmed"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})
}
