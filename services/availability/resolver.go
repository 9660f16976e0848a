package availability

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	doctorRepo "github.com/Jayr222/appointment-systemv2-sub002/database/repository/doctor"
	reservationRepo "github.com/Jayr222/appointment-systemv2-sub002/database/repository/reservation"
	"github.com/Jayr222/appointment-systemv2-sub002/models"
	"github.com/Jayr222/appointment-systemv2-sub002/utils"
)

const (
	ReasonDoctorUnavailable = "doctor unavailable on this day"
	ReasonDoctorInactive    = "doctor not currently accepting appointments"
	ReasonFullyBooked       = "all slots for this day are taken"
)

// Result is the resolver's answer for one doctor/date pair. An empty slot set
// is a normal outcome, explained by Reason; it is never an error.
type Result struct {
	Slots  []string `json:"slots"`
	Reason string   `json:"reason,omitempty"`
}

// Resolver computes the currently bookable slots for a doctor on a date.
type Resolver interface {
	Resolve(ctx context.Context, doctorID, date string) (Result, error)
}

// DefaultResolver derives availability from the doctor's weekly schedule
// minus the non-cancelled reservations for the date. Pure read, no caching:
// every call reflects the store at that instant.
type DefaultResolver struct {
	Doctors      doctorRepo.DoctorRepository
	Reservations reservationRepo.ReservationRepository
}

func (r *DefaultResolver) Resolve(ctx context.Context, doctorID, date string) (Result, error) {
	logger := utils.GetLogger()

	day, err := utils.ParseDate(date)
	if err != nil {
		return Result{}, err
	}

	doctor, err := r.Doctors.GetByID(ctx, doctorID)
	if err != nil {
		return Result{}, fmt.Errorf("resolve availability for %s: %w", doctorID, err)
	}
	if !doctor.Active {
		return Result{Reason: ReasonDoctorInactive}, nil
	}

	sched, ok := doctor.DayFor(day.Weekday())
	if !ok || sched.Closed || len(sched.Slots) == 0 {
		return Result{Reason: ReasonDoctorUnavailable}, nil
	}

	reserved, err := r.Reservations.ActiveSlots(ctx, doctorID, date)
	if err != nil {
		return Result{}, fmt.Errorf("fetch reserved slots for %s %s: %w", doctorID, date, err)
	}

	taken := make(map[string]bool, len(reserved))
	for _, label := range reserved {
		canonical, err := utils.NormalizeSlot(label)
		if err != nil {
			logger.Warn("skipping malformed reserved slot label",
				zap.String("doctorID", doctorID), zap.String("slot", label))
			continue
		}
		taken[canonical] = true
	}

	// Configured order is chronological; preserve it.
	free := make([]string, 0, len(sched.Slots))
	for _, label := range sched.Slots {
		canonical, err := utils.NormalizeSlot(label)
		if err != nil {
			logger.Warn("skipping malformed configured slot label",
				zap.String("doctorID", doctorID), zap.String("slot", label))
			continue
		}
		if !taken[canonical] {
			free = append(free, canonical)
		}
	}

	if len(free) == 0 {
		return Result{Slots: free, Reason: ReasonFullyBooked}, nil
	}
	return Result{Slots: free}, nil
}

// Offered reports whether the doctor's schedule lists the slot on the date's
// weekday at all, regardless of reservations. Used to distinguish a slot that
// was never offered from one that is merely taken.
func Offered(doctor *models.Doctor, day time.Time, slot string) bool {
	sched, ok := doctor.DayFor(day.Weekday())
	if !ok || sched.Closed {
		return false
	}
	for _, label := range sched.Slots {
		if canonical, err := utils.NormalizeSlot(label); err == nil && canonical == slot {
			return true
		}
	}
	return false
}
