package realtime

import (
	"context"

	"github.com/Jayr222/appointment-systemv2-sub002/models"
)

// EventAvailabilityUpdated is the wire name of the availability broadcast.
const EventAvailabilityUpdated = "doctor-availability-updated"

// Publisher announces availability changes. Delivery is fan-out,
// at-least-once: payloads are advisory and receivers re-resolve from the
// source of truth.
type Publisher interface {
	Publish(ctx context.Context, ev models.AvailabilityEvent) error
}

// Subscriber delivers availability events until the returned cancel func is
// called or the context ends.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan models.AvailabilityEvent, func(), error)
}

// Channel is a full publish/subscribe transport.
type Channel interface {
	Publisher
	Subscriber
}
