package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Jayr222/appointment-systemv2-sub002/models"
	"github.com/Jayr222/appointment-systemv2-sub002/utils"
)

// RedisChannel broadcasts availability events over a Redis pub/sub channel so
// every API instance sees reservations committed by its peers.
type RedisChannel struct {
	Client  *redis.Client
	Channel string
}

func NewRedisChannel(client *redis.Client) *RedisChannel {
	return &RedisChannel{Client: client, Channel: EventAvailabilityUpdated}
}

func (c *RedisChannel) Publish(ctx context.Context, ev models.AvailabilityEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal availability event: %w", err)
	}
	if err := c.Client.Publish(ctx, c.Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish availability event: %w", err)
	}
	return nil
}

func (c *RedisChannel) Subscribe(ctx context.Context) (<-chan models.AvailabilityEvent, func(), error) {
	sub := c.Client.Subscribe(ctx, c.Channel)
	// Force the subscription to be established before we hand out the channel.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("subscribe to %s: %w", c.Channel, err)
	}

	out := make(chan models.AvailabilityEvent, 16)
	go func() {
		defer close(out)
		logger := utils.GetLogger()
		for msg := range sub.Channel() {
			var ev models.AvailabilityEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logger.Warn("dropping malformed availability event", zap.Error(err))
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() { _ = sub.Close() }
	return out, cancel, nil
}
