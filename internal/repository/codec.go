package repository

import (
	"time"

	"github.com/yogaflow/studio-booking/internal/domain"
	"github.com/yogaflow/studio-booking/internal/store"
)

// Document field names. The store keeps the original camelCase wire names;
// everything above the repository layer speaks domain structs.
const (
	fieldID              = "id"
	fieldInstanceID      = "instancesId"
	fieldUserID          = "userId"
	fieldStatus          = "status"
	fieldCourseID        = "courseId"
	fieldInstructor      = "instructor"
	fieldDate            = "date"
	fieldTime            = "time"
	fieldCurrentBookings = "currentBookings"
	fieldActive          = "active"
	fieldValid           = "valid"
	fieldCourseName      = "courseName"
	fieldCourseType      = "courseType"
	fieldDescription     = "description"
	fieldDuration        = "durationMinutes"
	fieldCapacity        = "capacity"
	fieldPrice           = "pricePerClass"
	fieldStudioRoom      = "studioRoom"
	fieldCreatedAt       = "createdAt"
	fieldUpdatedAt       = "updatedAt"
)

func decodeBooking(doc *store.Document) *domain.Booking {
	return &domain.Booking{
		ID:         doc.ID,
		InstanceID: asInt(doc.Data[fieldInstanceID]),
		UserID:     asString(doc.Data[fieldUserID]),
		Status:     domain.BookingStatus(asString(doc.Data[fieldStatus])),
		CreatedAt:  asTime(doc.Data[fieldCreatedAt]),
		UpdatedAt:  asTime(doc.Data[fieldUpdatedAt]),
	}
}

func encodeBooking(b *domain.Booking) map[string]any {
	return map[string]any{
		fieldInstanceID: b.InstanceID,
		fieldUserID:     b.UserID,
		fieldStatus:     b.Status.String(),
	}
}

func decodeInstance(doc *store.Document) *domain.ClassInstance {
	return &domain.ClassInstance{
		ID:              asInt(doc.Data[fieldID]),
		DocID:           doc.ID,
		CourseID:        asInt(doc.Data[fieldCourseID]),
		Instructor:      asString(doc.Data[fieldInstructor]),
		Date:            asString(doc.Data[fieldDate]),
		Time:            asString(doc.Data[fieldTime]),
		CurrentBookings: asInt(doc.Data[fieldCurrentBookings]),
		Status:          domain.ClassStatus(asString(doc.Data[fieldStatus])),
		Active:          asBool(doc.Data[fieldActive]),
		Valid:           asBool(doc.Data[fieldValid]),
	}
}

func decodeCourse(doc *store.Document) *domain.Course {
	return &domain.Course{
		ID:              asInt(doc.Data[fieldID]),
		DocID:           doc.ID,
		Name:            asString(doc.Data[fieldCourseName]),
		Type:            asString(doc.Data[fieldCourseType]),
		Description:     asString(doc.Data[fieldDescription]),
		DurationMinutes: asInt(doc.Data[fieldDuration]),
		Capacity:        asInt(doc.Data[fieldCapacity]),
		PricePerClass:   asFloat(doc.Data[fieldPrice]),
		Instructor:      asString(doc.Data[fieldInstructor]),
		StudioRoom:      asString(doc.Data[fieldStudioRoom]),
		Valid:           asBool(doc.Data[fieldValid]),
	}
}

// Numbers come back as int64 or float64 depending on how the document was
// written; treat them interchangeably.
func asInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asTime(v any) time.Time {
	t, _ := v.(time.Time)
	return t
}
