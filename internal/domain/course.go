package domain

// Course represents a class offering. Owned by the catalog; the booking
// engine reads it only for the capacity ceiling.
type Course struct {
	ID              int64   `json:"id"`
	DocID           string  `json:"-"`
	Name            string  `json:"course_name"`
	Type            string  `json:"course_type"`
	Description     string  `json:"description"`
	DurationMinutes int64   `json:"duration_minutes"`
	Capacity        int64   `json:"capacity"`
	PricePerClass   float64 `json:"price_per_class"`
	Instructor      string  `json:"instructor"`
	StudioRoom      string  `json:"studio_room"`
	Valid           bool    `json:"valid"`
}

// Validate validates course fields the engine depends on
func (c *Course) Validate() error {
	if c.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	return nil
}
