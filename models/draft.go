package models

import "time"

// BookingDraft is the in-progress booking form persisted per patient so an
// interrupted session can resume. It is never authoritative for availability.
type BookingDraft struct {
	DoctorID string    `json:"doctorId"`
	Date     string    `json:"date"`
	Slot     string    `json:"slot"`
	Reason   string    `json:"reason,omitempty"`
	SavedAt  time.Time `json:"savedAt"`
}

// Fresh reports whether the draft was saved within the freshness window.
// Readers must check this before trusting contents, independent of any
// store-level TTL.
func (d BookingDraft) Fresh(now time.Time, window time.Duration) bool {
	return !d.SavedAt.IsZero() && now.Sub(d.SavedAt) <= window
}
