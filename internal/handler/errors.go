package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yogaflow/studio-booking/internal/domain"
	"github.com/yogaflow/studio-booking/internal/dto"
)

// handleError maps domain errors to HTTP responses. Expected business
// conflicts (full, duplicate, too late) get distinct codes so clients can
// surface them as actionable outcomes rather than generic failures.
func handleError(c *gin.Context, err error) {
	switch {
	case domain.IsMissingFieldError(err):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "MISSING_FIELD",
		})
	case errors.Is(err, domain.ErrInvalidBookingStatus):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_STATUS",
		})
	case errors.Is(err, domain.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "BOOKING_NOT_FOUND",
		})
	case errors.Is(err, domain.ErrInstanceNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INSTANCE_NOT_FOUND",
		})
	case errors.Is(err, domain.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "COURSE_NOT_FOUND",
		})
	case errors.Is(err, domain.ErrInstanceFull):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   err.Error(),
			Code:    "INSTANCE_FULL",
			Message: "This class has no seats left",
		})
	case errors.Is(err, domain.ErrDuplicateBooking):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   err.Error(),
			Code:    "DUPLICATE_BOOKING",
			Message: "You already have an active booking for this class",
		})
	case errors.Is(err, domain.ErrCancellationTooLate):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   err.Error(),
			Code:    "CANCELLATION_TOO_LATE",
			Message: "Bookings cannot be cancelled within 30 minutes of class start",
		})
	case domain.IsValidationError(err):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	case domain.IsStoreError(err):
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "storage failure",
			Code:  "STORE_ERROR",
		})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "internal error",
			Code:  "INTERNAL_ERROR",
		})
	}
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.ErrorResponse{
		Error: domain.ErrBookingNotFound.Error(),
		Code:  "BOOKING_NOT_FOUND",
	})
}
