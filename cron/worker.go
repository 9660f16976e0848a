package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Jayr222/appointment-systemv2-sub002/config"
	"github.com/Jayr222/appointment-systemv2-sub002/services/booking"
	"github.com/Jayr222/appointment-systemv2-sub002/services/tasks"
)

// InitExpiryWorker runs the async worker that releases pending reservations
// whose hold window lapsed without a doctor-side confirmation.
func InitExpiryWorker(coordinator booking.Coordinator) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeReservationExpire, handleExpireTask(coordinator))

	go func() {
		log.Println("[ExpiryWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ExpiryWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ExpiryWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleExpireTask(coordinator booking.Coordinator) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.ExpirePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ExpiryHandler] Invalid payload: %v", err)
			return err
		}

		if err := coordinator.ExpirePending(ctx, p.ReservationID); err != nil {
			log.Printf("[ExpiryHandler] Failed to expire reservation %s: %v", p.ReservationID, err)
			return err
		}
		return nil
	}
}
