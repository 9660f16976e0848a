package models

import "time"

// AvailabilityEvent announces that the slot set for a doctor/date changed.
// It deliberately carries no slot detail: receivers must re-resolve from the
// source of truth rather than trust the payload.
type AvailabilityEvent struct {
	ID       string `json:"id"`
	DoctorID string `json:"doctorId"`
	Date     string `json:"date"`
}

// AvailabilityView is a client-held snapshot of the free slots for one
// doctor/date pair. It is derived state and stale the instant it is received.
type AvailabilityView struct {
	DoctorID  string    `json:"doctorId"`
	Date      string    `json:"date"`
	Slots     []string  `json:"slots"`
	Reason    string    `json:"reason,omitempty"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Has reports whether the view still lists the given slot.
func (v AvailabilityView) Has(slot string) bool {
	for _, s := range v.Slots {
		if s == slot {
			return true
		}
	}
	return false
}
