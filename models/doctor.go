package models

import (
	"strings"
	"time"
)

// DaySchedule holds the bookable slot labels a doctor offers on one weekday.
// Labels are canonical 24h "15:04" strings, kept in chronological order.
type DaySchedule struct {
	Closed bool     `bson:"closed" json:"closed"`
	Slots  []string `bson:"slots" json:"slots"`
}

// Doctor is the directory entry the booking core consumes read-only.
// Schedule is keyed by lowercase weekday name ("monday"); a missing entry
// means the doctor offers no slots that day.
type Doctor struct {
	ID        string                 `bson:"id" json:"id"`
	Name      string                 `bson:"name" json:"name"`
	Specialty string                 `bson:"specialty" json:"specialty"`
	Active    bool                   `bson:"active" json:"active"`
	Schedule  map[string]DaySchedule `bson:"schedule" json:"schedule"`
	UpdatedAt time.Time              `bson:"updatedAt" json:"updatedAt"`
}

// DayFor returns the schedule entry for the given weekday.
func (d *Doctor) DayFor(weekday time.Weekday) (DaySchedule, bool) {
	day, ok := d.Schedule[strings.ToLower(weekday.String())]
	return day, ok
}
