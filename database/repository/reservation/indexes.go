// File: database/repository/reservation/indexes.go
package reservationRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Jayr222/appointment-systemv2-sub002/models"
)

// EnsureIndexes creates the necessary indexes on the reservations collection.
// The partial unique index is the storage-level guarantee that no two
// non-cancelled reservations share a (doctorId, date, slot) key. Requires
// MongoDB 6.0+ for $in in partialFilterExpression.
func (r *mongoReservationRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys: bson.D{
				{Key: "doctorId", Value: 1},
				{Key: "date", Value: 1},
				{Key: "slot", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("unique_active_slot").
				SetPartialFilterExpression(bson.M{
					"status": bson.M{"$in": []string{
						models.ReservationPending,
						models.ReservationConfirmed,
					}},
				}),
		},
		{
			Keys:    bson.D{{Key: "doctorId", Value: 1}, {Key: "date", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("doctor_date_status_idx"),
		},
		{
			Keys:    bson.D{{Key: "patientId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("patient_date_idx"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create reservation indexes: %w", err)
	}
	return nil
}
