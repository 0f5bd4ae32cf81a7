package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yogaflow/studio-booking/internal/domain"
	"github.com/yogaflow/studio-booking/internal/dto"
)

func setupAdminRouter(bookingService *MockBookingService, directoryService *MockDirectoryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	h := NewAdminHandler(bookingService, directoryService)
	admin := router.Group("/admin")
	{
		admin.POST("/recalculate", h.RecalculateAll)
		admin.POST("/instances/:id/recalculate", h.RecalculateInstance)
		admin.GET("/instances/:id/bookings", h.GetInstanceBookings)
		admin.POST("/mark-attended", h.MarkAttended)
		admin.DELETE("/bookings/:id", h.DeleteBooking)
	}
	return router
}

func TestRecalculateInstanceHandler(t *testing.T) {
	t.Run("repairs and reports", func(t *testing.T) {
		svc := &MockBookingService{
			RecalculateInstanceFunc: func(ctx context.Context, instanceID int64) (*dto.RecalculateResponse, error) {
				if instanceID != 42 {
					t.Errorf("instanceID = %d, want 42", instanceID)
				}
				return &dto.RecalculateResponse{InstancesChecked: 1, InstancesRepaired: 1}, nil
			},
		}
		router := setupAdminRouter(svc, &MockDirectoryService{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/instances/42/recalculate", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var resp dto.RecalculateResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if resp.InstancesRepaired != 1 {
			t.Errorf("InstancesRepaired = %d, want 1", resp.InstancesRepaired)
		}
	})

	t.Run("non-numeric id", func(t *testing.T) {
		router := setupAdminRouter(&MockBookingService{}, &MockDirectoryService{})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/instances/abc/recalculate", nil))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})

	t.Run("unknown instance", func(t *testing.T) {
		svc := &MockBookingService{
			RecalculateInstanceFunc: func(ctx context.Context, instanceID int64) (*dto.RecalculateResponse, error) {
				return nil, domain.ErrInstanceNotFound
			},
		}
		router := setupAdminRouter(svc, &MockDirectoryService{})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/instances/99/recalculate", nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})
}

func TestMarkAttendedHandler(t *testing.T) {
	svc := &MockBookingService{
		MarkPastBookingsAsAttendedFunc: func(ctx context.Context) (*dto.MarkAttendedResponse, error) {
			return &dto.MarkAttendedResponse{BookingsMarked: 7}, nil
		},
	}
	router := setupAdminRouter(svc, &MockDirectoryService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/mark-attended", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp dto.MarkAttendedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if resp.BookingsMarked != 7 {
		t.Errorf("BookingsMarked = %d, want 7", resp.BookingsMarked)
	}
}

func TestDeleteBookingHandler(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		router := setupAdminRouter(&MockBookingService{}, &MockDirectoryService{})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/bookings/b1", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	})

	t.Run("missing booking", func(t *testing.T) {
		svc := &MockBookingService{
			DeleteBookingFunc: func(ctx context.Context, bookingID string) error {
				return domain.ErrBookingNotFound
			},
		}
		router := setupAdminRouter(svc, &MockDirectoryService{})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/bookings/nope", nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})
}

func TestGetInstanceBookingsHandler(t *testing.T) {
	dir := &MockDirectoryService{
		GetBookingsByInstanceFunc: func(ctx context.Context, instanceID int64) ([]*dto.BookingResponse, error) {
			return []*dto.BookingResponse{ownedBooking("b1", "user-001")}, nil
		},
	}
	router := setupAdminRouter(&MockBookingService{}, dir)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/instances/1/bookings", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Bookings []*dto.BookingResponse `json:"bookings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(resp.Bookings) != 1 {
		t.Errorf("got %d bookings, want 1", len(resp.Bookings))
	}
}
