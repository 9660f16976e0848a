package models

import "time"

// Reservation statuses. A reservation is created as "pending", moves to
// "confirmed" on the doctor side, or to "cancelled" by patient/admin action
// or the pending-hold expiry worker.
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
)

// Reservation records one booked slot. At most one non-cancelled reservation
// may exist per (doctorId, date, slot).
type Reservation struct {
	ID        string    `bson:"id" json:"id"`
	DoctorID  string    `bson:"doctorId" json:"doctorId"`
	Date      string    `bson:"date" json:"date"` // "2006-01-02"
	Slot      string    `bson:"slot" json:"slot"` // canonical "15:04" label
	PatientID string    `bson:"patientId" json:"patientId"`
	Reason    string    `bson:"reason,omitempty" json:"reason,omitempty"`
	Status    string    `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Cancelled reports whether the reservation no longer holds its slot.
func (r *Reservation) Cancelled() bool {
	return r.Status == ReservationCancelled
}

// BookingRequest is the coordinator's input for a single booking attempt.
type BookingRequest struct {
	DoctorID  string `json:"doctorId"`
	Date      string `json:"date"`
	Slot      string `json:"slot"`
	PatientID string `json:"-"`
	Reason    string `json:"reason"`
}
