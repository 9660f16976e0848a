// Package client is the reconciliation layer a booking front end drives: it
// owns the availability view for the focused doctor/date, the selected slot,
// and the triple-check protocol (select-time, submit-time, push-triggered)
// that keeps that view honest against concurrent bookers.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Jayr222/appointment-systemv2-sub002/models"
	"github.com/Jayr222/appointment-systemv2-sub002/services/availability"
	"github.com/Jayr222/appointment-systemv2-sub002/services/booking"
	"github.com/Jayr222/appointment-systemv2-sub002/services/realtime"
	"github.com/Jayr222/appointment-systemv2-sub002/utils"
)

var (
	ErrNoFocus         = errors.New("no doctor/date in focus")
	ErrNoSelection     = errors.New("no slot selected")
	ErrSlotUnavailable = errors.New("selected slot is no longer available")
)

// Booker is the slice of the coordinator the session needs.
type Booker interface {
	Book(ctx context.Context, req models.BookingRequest) (*models.Reservation, error)
}

// Session reconciles one patient's booking flow. The view it holds is always
// a cache: every path that can invalidate it is matched by a fresh resolver
// read before anything is trusted. Async results that arrive after the focus
// moved on are discarded via the epoch guard.
type Session struct {
	resolver availability.Resolver
	booker   Booker
	drafts   *DraftStore
	logger   *zap.Logger

	patientID string

	mu            sync.Mutex
	epoch         uint64
	doctorID      string
	date          string
	view          models.AvailabilityView
	selected      string
	reason        string
	notice        string
	cooldownUntil time.Time
}

func NewSession(patientID string, resolver availability.Resolver, booker Booker, drafts *DraftStore) *Session {
	return &Session{
		resolver:  resolver,
		booker:    booker,
		drafts:    drafts,
		logger:    utils.GetLogger(),
		patientID: patientID,
	}
}

// Focus switches the session to a doctor/date pair: the previous selection
// and any unavailability notice are discarded and a fresh view is fetched.
func (s *Session) Focus(ctx context.Context, doctorID, date string) error {
	s.mu.Lock()
	s.epoch++
	ep := s.epoch
	s.doctorID = doctorID
	s.date = date
	s.selected = ""
	s.notice = ""
	s.view = models.AvailabilityView{DoctorID: doctorID, Date: date}
	s.mu.Unlock()

	view, err := s.fetchView(ctx, doctorID, date)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != ep {
		// User already moved on; this result describes a stale focus.
		return nil
	}
	if err != nil {
		s.notice = noticeFor(err)
		return err
	}
	s.view = view
	return nil
}

// Select picks a slot. The view that offered the slot may already be stale,
// so availability is re-confirmed with a fresh read before the selection
// sticks; on invalidation the selection is cleared and a notice surfaced.
func (s *Session) Select(ctx context.Context, slot string) error {
	canonical, err := utils.NormalizeSlot(slot)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.doctorID == "" {
		s.mu.Unlock()
		return ErrNoFocus
	}
	ep := s.epoch
	doctorID, date := s.doctorID, s.date
	s.mu.Unlock()

	view, err := s.fetchView(ctx, doctorID, date)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != ep {
		return nil
	}
	if err != nil {
		s.notice = noticeFor(err)
		return err
	}

	s.view = view
	if !view.Has(canonical) {
		s.selected = ""
		s.notice = takenNotice(canonical)
		return ErrSlotUnavailable
	}

	s.selected = canonical
	s.notice = ""
	s.saveDraftLocked(ctx)
	return nil
}

// SetReason records the visit reason typed so far and keeps the draft fresh.
func (s *Session) SetReason(ctx context.Context, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reason = reason
	if s.selected != "" {
		s.saveDraftLocked(ctx)
	}
}

// HandleEvent reacts to an availability broadcast. Events for any other
// doctor/date than the focused pair are ignored; matching ones force an
// unconditional view refresh and may invalidate the selection.
func (s *Session) HandleEvent(ctx context.Context, ev models.AvailabilityEvent) {
	s.mu.Lock()
	if ev.DoctorID != s.doctorID || ev.Date != s.date {
		s.mu.Unlock()
		return
	}
	ep := s.epoch
	doctorID, date := s.doctorID, s.date
	s.mu.Unlock()

	view, err := s.fetchView(ctx, doctorID, date)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != ep {
		return
	}
	if err != nil {
		s.logger.Warn("event-triggered refresh failed",
			zap.String("doctorID", doctorID), zap.String("date", date), zap.Error(err))
		return
	}

	s.view = view
	if s.selected != "" && !view.Has(s.selected) {
		s.notice = takenNotice(s.selected)
		s.selected = ""
	}
}

// Run consumes availability broadcasts until ctx ends.
func (s *Session) Run(ctx context.Context, sub realtime.Subscriber) error {
	events, cancel, err := sub.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to availability events: %w", err)
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			s.HandleEvent(ctx, ev)
		}
	}
}

// Submit runs the final confirmation read and, only if it passes, calls the
// coordinator. A SlotTaken rejection (the race the final check still missed)
// clears the selection and refreshes the view rather than surfacing a
// generic error. During a server-imposed cooldown Submit refuses locally.
func (s *Session) Submit(ctx context.Context, reason string) (*models.Reservation, error) {
	s.mu.Lock()
	if s.selected == "" {
		s.mu.Unlock()
		return nil, ErrNoSelection
	}
	if remaining := time.Until(s.cooldownUntil); remaining > 0 {
		s.mu.Unlock()
		return nil, &booking.BookingError{
			Code:       booking.CodeRateLimited,
			Message:    fmt.Sprintf("please wait %s before trying again", remaining.Round(time.Second)),
			RetryAfter: remaining,
		}
	}
	ep := s.epoch
	doctorID, date, slot := s.doctorID, s.date, s.selected
	s.reason = reason
	s.saveDraftLocked(ctx)
	s.mu.Unlock()

	view, err := s.fetchView(ctx, doctorID, date)

	s.mu.Lock()
	if s.epoch != ep {
		s.mu.Unlock()
		return nil, ErrNoSelection
	}
	if err != nil {
		s.notice = noticeFor(err)
		s.mu.Unlock()
		return nil, err
	}
	s.view = view
	if !view.Has(slot) {
		s.selected = ""
		s.notice = takenNotice(slot)
		s.mu.Unlock()
		return nil, ErrSlotUnavailable
	}
	s.mu.Unlock()

	res, err := s.booker.Book(ctx, models.BookingRequest{
		DoctorID:  doctorID,
		Date:      date,
		Slot:      slot,
		PatientID: s.patientID,
		Reason:    reason,
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if be, ok := booking.AsBookingError(err); ok {
			switch be.Code {
			case booking.CodeSlotTaken:
				s.selected = ""
				s.notice = takenNotice(slot)
				go s.refreshAfterConflict(doctorID, date, ep)
			case booking.CodeRateLimited:
				s.cooldownUntil = time.Now().Add(be.RetryAfter)
				s.notice = be.Message
			default:
				s.notice = be.Message
			}
		} else {
			s.notice = noticeFor(err)
		}
		return nil, err
	}

	s.selected = ""
	s.notice = ""
	s.reason = ""
	s.clearDraftLocked(ctx)
	return res, nil
}

// refreshAfterConflict re-fetches the view after a lost race so the user sees
// the up-to-date slot list alongside the taken notice.
func (s *Session) refreshAfterConflict(doctorID, date string, ep uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	view, err := s.fetchView(ctx, doctorID, date)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != ep {
		return
	}
	s.view = view
}

// Resume restores a fresh draft: focus, selection, and reason. A draft whose
// slot has since been taken still restores the focus and surfaces the usual
// taken notice.
func (s *Session) Resume(ctx context.Context) (*models.BookingDraft, error) {
	if s.drafts == nil {
		return nil, nil
	}
	draft, err := s.drafts.Load(ctx, s.patientID)
	if err != nil || draft == nil {
		return nil, err
	}

	if err := s.Focus(ctx, draft.DoctorID, draft.Date); err != nil {
		return draft, err
	}
	s.mu.Lock()
	s.reason = draft.Reason
	s.mu.Unlock()

	if err := s.Select(ctx, draft.Slot); err != nil && !errors.Is(err, ErrSlotUnavailable) {
		return draft, err
	}
	return draft, nil
}

func (s *Session) fetchView(ctx context.Context, doctorID, date string) (models.AvailabilityView, error) {
	result, err := s.resolver.Resolve(ctx, doctorID, date)
	if err != nil {
		return models.AvailabilityView{}, err
	}
	return models.AvailabilityView{
		DoctorID:  doctorID,
		Date:      date,
		Slots:     result.Slots,
		Reason:    result.Reason,
		FetchedAt: time.Now(),
	}, nil
}

func (s *Session) saveDraftLocked(ctx context.Context) {
	if s.drafts == nil {
		return
	}
	draft := models.BookingDraft{
		DoctorID: s.doctorID,
		Date:     s.date,
		Slot:     s.selected,
		Reason:   s.reason,
	}
	if err := s.drafts.Save(ctx, s.patientID, draft); err != nil {
		s.logger.Warn("failed to save booking draft", zap.Error(err))
	}
}

func (s *Session) clearDraftLocked(ctx context.Context) {
	if s.drafts == nil {
		return
	}
	if err := s.drafts.Clear(ctx, s.patientID); err != nil {
		s.logger.Warn("failed to clear booking draft", zap.Error(err))
	}
}

// View returns a copy of the current availability snapshot.
func (s *Session) View() models.AvailabilityView {
	s.mu.Lock()
	defer s.mu.Unlock()
	view := s.view
	view.Slots = append([]string(nil), s.view.Slots...)
	return view
}

func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

func (s *Session) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

// CooldownRemaining reports how long the submit control stays disabled after
// a rate-limit rejection.
func (s *Session) CooldownRemaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if remaining := time.Until(s.cooldownUntil); remaining > 0 {
		return remaining
	}
	return 0
}

func takenNotice(slot string) string {
	return fmt.Sprintf("slot %s has just been taken, please pick another", slot)
}

func noticeFor(err error) string {
	if be, ok := booking.AsBookingError(err); ok {
		return be.Message
	}
	return "cannot reach the booking service, please check your connection and retry"
}
