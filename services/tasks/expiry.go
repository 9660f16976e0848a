package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const TypeReservationExpire = "reservation:expire"

// ExpirePayload identifies the pending reservation to release.
type ExpirePayload struct {
	ReservationID string `json:"reservationId"`
}

// NewExpireTask builds the deferred task that releases a pending reservation
// at fireAt if the doctor has not confirmed it by then.
func NewExpireTask(reservationID string, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(ExpirePayload{ReservationID: reservationID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeReservationExpire, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}
	return task, opts, nil
}

// ExpiryScheduler enqueues pending-hold expirations.
type ExpiryScheduler interface {
	ScheduleExpiry(ctx context.Context, reservationID string, hold time.Duration) error
}

// AsynqScheduler enqueues expirations on the asynq queue.
type AsynqScheduler struct {
	client *asynq.Client
}

func NewAsynqScheduler(redisOpt asynq.RedisClientOpt) *AsynqScheduler {
	return &AsynqScheduler{client: asynq.NewClient(redisOpt)}
}

func (s *AsynqScheduler) ScheduleExpiry(ctx context.Context, reservationID string, hold time.Duration) error {
	task, opts, err := NewExpireTask(reservationID, time.Now().Add(hold))
	if err != nil {
		return fmt.Errorf("build expire task: %w", err)
	}
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue expire task: %w", err)
	}
	return nil
}

func (s *AsynqScheduler) Close() error {
	return s.client.Close()
}
