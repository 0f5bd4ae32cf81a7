package domain

import (
	"testing"
	"time"
)

func instanceAt(start time.Time) *ClassInstance {
	return &ClassInstance{
		ID:       1,
		CourseID: 10,
		Date:     start.Format("2006-01-02"),
		Time:     start.Format("15:04"),
		Status:   ClassStatusScheduled,
	}
}

func TestClassInstance_StartTime(t *testing.T) {
	i := &ClassInstance{Date: "2026-03-15", Time: "10:00"}
	start, err := i.StartTime()
	if err != nil {
		t.Fatalf("StartTime() error = %v", err)
	}
	want := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)
	if !start.Equal(want) {
		t.Errorf("StartTime() = %v, want %v", start, want)
	}

	i = &ClassInstance{Date: "not-a-date", Time: "10:00"}
	if _, err := i.StartTime(); err != ErrInvalidSchedule {
		t.Errorf("StartTime() error = %v, want ErrInvalidSchedule", err)
	}
}

func TestClassInstance_IsBookingClosed(t *testing.T) {
	start := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)
	i := instanceAt(start)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before start", start.Add(-time.Hour), false},
		{"at start", start, false},
		{"one hour in", start.Add(time.Hour), false},
		{"exactly two hours in", start.Add(2 * time.Hour), false},
		{"past the window", start.Add(2*time.Hour + time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := i.IsBookingClosed(tt.now); got != tt.want {
				t.Errorf("IsBookingClosed(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestClassInstance_InCancellationWindow(t *testing.T) {
	start := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)
	i := instanceAt(start)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"an hour out", start.Add(-time.Hour), false},
		{"exactly at cutoff", start.Add(-30 * time.Minute), false},
		{"ten minutes out", start.Add(-10 * time.Minute), true},
		{"after start", start.Add(time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := i.InCancellationWindow(tt.now); got != tt.want {
				t.Errorf("InCancellationWindow(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestClassInstance_IsPast(t *testing.T) {
	start := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)
	i := instanceAt(start)

	if i.IsPast(start.Add(-time.Minute)) {
		t.Error("instance should not be past before start")
	}
	if !i.IsPast(start.Add(time.Minute)) {
		t.Error("instance should be past after start")
	}

	// Unparseable schedules never match the sweep
	broken := &ClassInstance{Date: "bad", Time: "worse"}
	if broken.IsPast(start) {
		t.Error("broken schedule should not report past")
	}
}

func TestClassInstance_HasCapacity(t *testing.T) {
	course := &Course{ID: 10, Capacity: 5}

	tests := []struct {
		current int64
		want    bool
	}{
		{0, true},
		{4, true},
		{5, false},
		{6, false},
	}

	for _, tt := range tests {
		i := &ClassInstance{CurrentBookings: tt.current}
		if got := i.HasCapacity(course); got != tt.want {
			t.Errorf("HasCapacity() with %d/%d = %v, want %v", tt.current, course.Capacity, got, tt.want)
		}
	}
}

func TestCourse_Validate(t *testing.T) {
	c := &Course{ID: 10, Capacity: 5}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	c.Capacity = 0
	if err := c.Validate(); err != ErrInvalidCapacity {
		t.Errorf("Validate() = %v, want ErrInvalidCapacity", err)
	}
}
