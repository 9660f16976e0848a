// File: database/repository/reservation/interface.go
package reservationRepo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Jayr222/appointment-systemv2-sub002/database"
	"github.com/Jayr222/appointment-systemv2-sub002/models"
)

var (
	// ErrDuplicateSlot is returned when a non-cancelled reservation already
	// holds the (doctorId, date, slot) key.
	ErrDuplicateSlot = errors.New("slot already reserved")
	// ErrNotFound is returned when no reservation matches the lookup.
	ErrNotFound = errors.New("reservation not found")
)

// ReservationRepository persists reservations under the uniqueness invariant:
// at most one non-cancelled reservation per (doctorId, date, slot).
type ReservationRepository interface {
	Create(ctx context.Context, r *models.Reservation) error
	GetByID(ctx context.Context, id string) (*models.Reservation, error)
	// ActiveSlots returns the slot labels held by non-cancelled reservations
	// for the doctor/date.
	ActiveSlots(ctx context.Context, doctorID, date string) ([]string, error)
	// UpdateStatus transitions a reservation from one status to another. It
	// returns ErrNotFound when no reservation matches (id, from).
	UpdateStatus(ctx context.Context, id, from, to string) error
	ListByPatient(ctx context.Context, patientID string) ([]models.Reservation, error)
}

type mongoReservationRepo struct {
	coll *mongo.Collection
}

// NewMongoReservationRepo constructs a new MongoDB ReservationRepository.
func NewMongoReservationRepo() ReservationRepository {
	return &mongoReservationRepo{
		coll: database.DB().Collection("reservations"),
	}
}
