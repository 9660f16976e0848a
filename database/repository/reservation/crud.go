// File: database/repository/reservation/crud.go
package reservationRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Jayr222/appointment-systemv2-sub002/models"
)

// Create inserts a reservation. The partial unique index on
// (doctorId, date, slot) rejects a second non-cancelled reservation for the
// same key, which surfaces as ErrDuplicateSlot.
func (r *mongoReservationRepo) Create(ctx context.Context, res *models.Reservation) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, res); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateSlot
		}
		return fmt.Errorf("failed to insert reservation: %w", err)
	}
	return nil
}

func (r *mongoReservationRepo) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var res models.Reservation
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&res)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch reservation %s: %w", id, err)
	}
	return &res, nil
}

func (r *mongoReservationRepo) UpdateStatus(ctx context.Context, id, from, to string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
