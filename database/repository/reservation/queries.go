// File: database/repository/reservation/queries.go
package reservationRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Jayr222/appointment-systemv2-sub002/models"
)

func activeStatusFilter() bson.M {
	return bson.M{"$in": []string{models.ReservationPending, models.ReservationConfirmed}}
}

func (r *mongoReservationRepo) ActiveSlots(ctx context.Context, doctorID, date string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"doctorId": doctorID,
		"date":     date,
		"status":   activeStatusFilter(),
	}

	raw, err := r.coll.Distinct(ctx, "slot", filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reserved slots: %w", err)
	}

	slots := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			slots = append(slots, s)
		}
	}
	return slots, nil
}

func (r *mongoReservationRepo) ListByPatient(ctx context.Context, patientID string) ([]models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "slot", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"patientId": patientID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch patient reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Reservation
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("error decoding reservations: %w", err)
	}
	return out, nil
}
