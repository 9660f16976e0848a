package booking

import (
	"context"

	"github.com/Jayr222/appointment-systemv2-sub002/models"
)

// Coordinator commits reservations under the per-(doctor, date, slot)
// uniqueness invariant and announces every slot-set mutation.
type Coordinator interface {
	// Book re-validates availability at commit time and persists the
	// reservation atomically. Rejections are *BookingError values.
	Book(ctx context.Context, req models.BookingRequest) (*models.Reservation, error)
	// Confirm transitions a pending reservation to confirmed (doctor side).
	Confirm(ctx context.Context, reservationID string) error
	// Cancel releases a non-cancelled reservation and announces the freed slot.
	Cancel(ctx context.Context, reservationID string) error
	// ExpirePending cancels a reservation only if it is still pending; the
	// expiry worker calls this when the hold window lapses.
	ExpirePending(ctx context.Context, reservationID string) error
}
