package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yogaflow/studio-booking/internal/dto"
	"github.com/yogaflow/studio-booking/internal/service"
	"github.com/yogaflow/studio-booking/pkg/telemetry"
)

// BookingHandler handles booking HTTP requests. All routes require an
// authenticated user; bookings are only visible to their owner.
type BookingHandler struct {
	bookingService   service.BookingService
	directoryService service.DirectoryService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService service.BookingService, directoryService service.DirectoryService) *BookingHandler {
	return &BookingHandler{
		bookingService:   bookingService,
		directoryService: directoryService,
	}
}

// CreateBooking handles POST /bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	if userID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "unauthorized",
			Code:  "UNAUTHORIZED",
		})
		return
	}

	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid request",
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.Int64("instance_id", req.InstanceID),
	)

	result, err := h.bookingService.CreateBooking(ctx, userID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("booking_id", result.ID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, result)
}

// ListBookings handles GET /bookings. With ?details=true each booking is
// joined with its class instance and course.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	if userID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "unauthorized",
			Code:  "UNAUTHORIZED",
		})
		return
	}
	span.SetAttributes(attribute.String("user_id", userID))

	if c.Query("details") == "true" {
		details, err := h.directoryService.GetUserBookingsWithDetails(ctx, userID)
		if err != nil {
			span.RecordError(err)
			handleError(c, err)
			return
		}
		span.SetStatus(codes.Ok, "")
		c.JSON(http.StatusOK, gin.H{"bookings": details})
		return
	}

	bookings, err := h.directoryService.GetBookingsByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		handleError(c, err)
		return
	}
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// GetBooking handles GET /bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	bookingID := c.Param("id")
	span.SetAttributes(attribute.String("booking_id", bookingID))

	if c.Query("details") == "true" {
		detail, err := h.directoryService.GetBookingWithDetails(ctx, bookingID)
		if err != nil {
			span.RecordError(err)
			handleError(c, err)
			return
		}
		if detail.UserID != userID {
			notFound(c)
			return
		}
		span.SetStatus(codes.Ok, "")
		c.JSON(http.StatusOK, detail)
		return
	}

	booking, err := h.directoryService.GetBooking(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		handleError(c, err)
		return
	}
	if booking.UserID != userID {
		// Hide other users' bookings
		notFound(c)
		return
	}
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, booking)
}

// UpdateBooking handles PATCH /bookings/:id
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.update")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	bookingID := c.Param("id")
	span.SetAttributes(attribute.String("booking_id", bookingID))

	var req dto.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid request",
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	if ok := h.ownsBooking(c, ctx, bookingID, userID); !ok {
		return
	}

	if err := h.bookingService.UpdateBooking(ctx, bookingID, &req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// CancelBooking handles POST /bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	bookingID := c.Param("id")
	span.SetAttributes(attribute.String("booking_id", bookingID))

	if ok := h.ownsBooking(c, ctx, bookingID, userID); !ok {
		return
	}

	if err := h.bookingService.CancelBooking(ctx, bookingID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// ownsBooking verifies the booking exists and belongs to the caller,
// writing the error response itself when it does not.
func (h *BookingHandler) ownsBooking(c *gin.Context, ctx context.Context, bookingID, userID string) bool {
	if userID == "" {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "unauthorized",
			Code:  "UNAUTHORIZED",
		})
		return false
	}
	booking, err := h.directoryService.GetBooking(ctx, bookingID)
	if err != nil {
		handleError(c, err)
		return false
	}
	if booking.UserID != userID {
		notFound(c)
		return false
	}
	return true
}
