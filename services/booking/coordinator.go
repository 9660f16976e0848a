package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	doctorRepo "github.com/Jayr222/appointment-systemv2-sub002/database/repository/doctor"
	reservationRepo "github.com/Jayr222/appointment-systemv2-sub002/database/repository/reservation"
	"github.com/Jayr222/appointment-systemv2-sub002/models"
	"github.com/Jayr222/appointment-systemv2-sub002/services/availability"
	"github.com/Jayr222/appointment-systemv2-sub002/services/realtime"
	"github.com/Jayr222/appointment-systemv2-sub002/services/tasks"
	"github.com/Jayr222/appointment-systemv2-sub002/utils"
)

// DefaultCoordinator is the production reservation coordinator. The resolver
// read and the insert run under a per-key lock, with the store's partial
// unique index as the backstop, so exactly one of any set of concurrent
// attempts on the same (doctor, date, slot) succeeds.
type DefaultCoordinator struct {
	Doctors      doctorRepo.DoctorRepository
	Reservations reservationRepo.ReservationRepository
	Resolver     availability.Resolver
	Events       realtime.Publisher
	Throttle     *Throttle
	Expiry       tasks.ExpiryScheduler
	Hold         time.Duration

	locks *keyedMutex
}

func NewCoordinator(
	doctors doctorRepo.DoctorRepository,
	reservations reservationRepo.ReservationRepository,
	resolver availability.Resolver,
	events realtime.Publisher,
	throttle *Throttle,
	expiry tasks.ExpiryScheduler,
	hold time.Duration,
) *DefaultCoordinator {
	return &DefaultCoordinator{
		Doctors:      doctors,
		Reservations: reservations,
		Resolver:     resolver,
		Events:       events,
		Throttle:     throttle,
		Expiry:       expiry,
		Hold:         hold,
		locks:        newKeyedMutex(),
	}
}

func reservationKey(doctorID, date, slot string) string {
	return doctorID + "|" + date + "|" + slot
}

func (c *DefaultCoordinator) Book(ctx context.Context, req models.BookingRequest) (*models.Reservation, error) {
	logger := utils.GetLogger()

	if c.Throttle != nil {
		if cooldown := c.Throttle.Take(req.PatientID); cooldown > 0 {
			return nil, errRateLimited(cooldown)
		}
	}

	if req.DoctorID == "" || req.PatientID == "" {
		return nil, errInvalid("doctor and patient are required")
	}
	day, err := utils.ParseDate(req.Date)
	if err != nil {
		return nil, errInvalid("invalid date %q", req.Date)
	}
	slot, err := utils.NormalizeSlot(req.Slot)
	if err != nil {
		return nil, errInvalid("invalid slot %q", req.Slot)
	}

	doctor, err := c.Doctors.GetByID(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, doctorRepo.ErrNotFound) {
			return nil, errInvalid("unknown doctor %q", req.DoctorID)
		}
		return nil, fmt.Errorf("look up doctor: %w", err)
	}
	if !doctor.Active {
		return nil, errDoctorUnavailable(availability.ReasonDoctorInactive)
	}
	if !availability.Offered(doctor, day, slot) {
		return nil, errDoctorUnavailable("doctor does not offer this slot")
	}

	unlock := c.locks.lock(reservationKey(req.DoctorID, req.Date, slot))
	defer unlock()

	// Authoritative check: a fresh resolver read, never a cached view.
	avail, err := c.Resolver.Resolve(ctx, req.DoctorID, req.Date)
	if err != nil {
		return nil, fmt.Errorf("re-check availability: %w", err)
	}
	if !contains(avail.Slots, slot) {
		return nil, errSlotTaken(slot)
	}

	res := &models.Reservation{
		ID:        uuid.New().String(),
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Slot:      slot,
		PatientID: req.PatientID,
		Reason:    req.Reason,
		Status:    models.ReservationPending,
		CreatedAt: time.Now(),
	}

	if err := c.Reservations.Create(ctx, res); err != nil {
		if errors.Is(err, reservationRepo.ErrDuplicateSlot) {
			// Race the lock could not see, caught by the unique index.
			return nil, errSlotTaken(slot)
		}
		return nil, fmt.Errorf("persist reservation: %w", err)
	}

	c.publishAvailability(ctx, req.DoctorID, req.Date)

	if c.Expiry != nil && c.Hold > 0 {
		if err := c.Expiry.ScheduleExpiry(ctx, res.ID, c.Hold); err != nil {
			logger.Warn("failed to schedule pending-hold expiry",
				zap.String("reservationID", res.ID), zap.Error(err))
		}
	}

	logger.Info("reservation booked",
		zap.String("reservationID", res.ID),
		zap.String("doctorID", res.DoctorID),
		zap.String("date", res.Date),
		zap.String("slot", res.Slot))
	return res, nil
}

func (c *DefaultCoordinator) Confirm(ctx context.Context, reservationID string) error {
	err := c.Reservations.UpdateStatus(ctx, reservationID,
		models.ReservationPending, models.ReservationConfirmed)
	if err != nil {
		return fmt.Errorf("confirm reservation %s: %w", reservationID, err)
	}
	// Availability is unchanged: the slot was already held while pending.
	return nil
}

func (c *DefaultCoordinator) Cancel(ctx context.Context, reservationID string) error {
	res, err := c.Reservations.GetByID(ctx, reservationID)
	if err != nil {
		return fmt.Errorf("cancel reservation %s: %w", reservationID, err)
	}
	if res.Cancelled() {
		return nil
	}

	if err := c.Reservations.UpdateStatus(ctx, reservationID, res.Status, models.ReservationCancelled); err != nil {
		if errors.Is(err, reservationRepo.ErrNotFound) {
			// Status moved underneath us; re-read to decide.
			cur, gerr := c.Reservations.GetByID(ctx, reservationID)
			if gerr == nil && cur.Cancelled() {
				return nil
			}
		}
		return fmt.Errorf("cancel reservation %s: %w", reservationID, err)
	}

	c.publishAvailability(ctx, res.DoctorID, res.Date)
	return nil
}

func (c *DefaultCoordinator) ExpirePending(ctx context.Context, reservationID string) error {
	res, err := c.Reservations.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrNotFound) {
			return nil
		}
		return err
	}
	if res.Status != models.ReservationPending {
		return nil
	}

	err = c.Reservations.UpdateStatus(ctx, reservationID,
		models.ReservationPending, models.ReservationCancelled)
	if errors.Is(err, reservationRepo.ErrNotFound) {
		// Confirmed or cancelled in the meantime, nothing to release.
		return nil
	}
	if err != nil {
		return fmt.Errorf("expire reservation %s: %w", reservationID, err)
	}

	utils.GetLogger().Info("pending reservation expired",
		zap.String("reservationID", reservationID),
		zap.String("doctorID", res.DoctorID),
		zap.String("date", res.Date))
	c.publishAvailability(ctx, res.DoctorID, res.Date)
	return nil
}

func (c *DefaultCoordinator) publishAvailability(ctx context.Context, doctorID, date string) {
	if c.Events == nil {
		return
	}
	ev := models.AvailabilityEvent{
		ID:       uuid.New().String(),
		DoctorID: doctorID,
		Date:     date,
	}
	if err := c.Events.Publish(ctx, ev); err != nil {
		utils.GetLogger().Warn("failed to publish availability event",
			zap.String("doctorID", doctorID), zap.String("date", date), zap.Error(err))
	}
}

func contains(slots []string, slot string) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}
