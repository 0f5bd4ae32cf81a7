package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yogaflow/studio-booking/internal/dto"
	"github.com/yogaflow/studio-booking/internal/service"
	"github.com/yogaflow/studio-booking/pkg/telemetry"
)

// AdminHandler handles maintenance endpoints: counter reconciliation, the
// attendance sweep, and hard deletes
type AdminHandler struct {
	bookingService   service.BookingService
	directoryService service.DirectoryService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(bookingService service.BookingService, directoryService service.DirectoryService) *AdminHandler {
	return &AdminHandler{
		bookingService:   bookingService,
		directoryService: directoryService,
	}
}

// RecalculateInstance handles POST /admin/instances/:id/recalculate
func (h *AdminHandler) RecalculateInstance(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.recalculate_instance")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	instanceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		span.SetStatus(codes.Error, "invalid instance id")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "instance id must be numeric",
			Code:  "INVALID_REQUEST",
		})
		return
	}
	span.SetAttributes(attribute.Int64("instance_id", instanceID))

	result, err := h.bookingService.RecalculateInstance(ctx, instanceID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// RecalculateAll handles POST /admin/recalculate
func (h *AdminHandler) RecalculateAll(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.recalculate_all")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	result, err := h.bookingService.RecalculateAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(
		attribute.Int("instances_checked", result.InstancesChecked),
		attribute.Int("instances_repaired", result.InstancesRepaired),
	)
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// MarkAttended handles POST /admin/mark-attended
func (h *AdminHandler) MarkAttended(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.mark_attended")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	result, err := h.bookingService.MarkPastBookingsAsAttended(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("bookings_marked", result.BookingsMarked))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// DeleteBooking handles DELETE /admin/bookings/:id
func (h *AdminHandler) DeleteBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.delete_booking")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	bookingID := c.Param("id")
	span.SetAttributes(attribute.String("booking_id", bookingID))

	if err := h.bookingService.DeleteBooking(ctx, bookingID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// GetInstanceBookings handles GET /admin/instances/:id/bookings
func (h *AdminHandler) GetInstanceBookings(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.instance_bookings")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	instanceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		span.SetStatus(codes.Error, "invalid instance id")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "instance id must be numeric",
			Code:  "INVALID_REQUEST",
		})
		return
	}
	span.SetAttributes(attribute.Int64("instance_id", instanceID))

	bookings, err := h.directoryService.GetBookingsByInstance(ctx, instanceID)
	if err != nil {
		span.RecordError(err)
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}
