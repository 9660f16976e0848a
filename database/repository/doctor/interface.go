// File: database/repository/doctor/interface.go
package doctorRepo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Jayr222/appointment-systemv2-sub002/database"
	"github.com/Jayr222/appointment-systemv2-sub002/models"
)

// ErrNotFound is returned when a doctor ID does not resolve to a known doctor.
var ErrNotFound = errors.New("doctor not found")

// DoctorRepository is the read-only view of the doctor directory the booking
// core consumes. Schedule configuration is written out of band.
type DoctorRepository interface {
	GetByID(ctx context.Context, id string) (*models.Doctor, error)
}

type mongoDoctorRepo struct {
	coll *mongo.Collection
}

// NewMongoDoctorRepo constructs a new MongoDB DoctorRepository.
func NewMongoDoctorRepo() DoctorRepository {
	return &mongoDoctorRepo{
		coll: database.DB().Collection("doctors"),
	}
}
