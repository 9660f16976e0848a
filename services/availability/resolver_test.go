package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	doctorRepo "github.com/Jayr222/appointment-systemv2-sub002/database/repository/doctor"
	"github.com/Jayr222/appointment-systemv2-sub002/models"
)

// mondayDate falls on a Monday.
const mondayDate = "2026-01-05"

type fakeDoctors struct {
	doctors map[string]*models.Doctor
}

func (f *fakeDoctors) GetByID(_ context.Context, id string) (*models.Doctor, error) {
	doc, ok := f.doctors[id]
	if !ok {
		return nil, doctorRepo.ErrNotFound
	}
	return doc, nil
}

type fakeReservations struct {
	// keyed by doctorID|date
	active map[string][]string
}

func (f *fakeReservations) ActiveSlots(_ context.Context, doctorID, date string) ([]string, error) {
	return f.active[doctorID+"|"+date], nil
}

func (f *fakeReservations) Create(context.Context, *models.Reservation) error { return nil }
func (f *fakeReservations) GetByID(context.Context, string) (*models.Reservation, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeReservations) UpdateStatus(context.Context, string, string, string) error { return nil }
func (f *fakeReservations) ListByPatient(context.Context, string) ([]models.Reservation, error) {
	return nil, nil
}

func testDoctor() *models.Doctor {
	return &models.Doctor{
		ID:     "dr-1",
		Name:   "Dr. Reyes",
		Active: true,
		Schedule: map[string]models.DaySchedule{
			"monday": {Slots: []string{"09:00", "09:30", "10:00"}},
			"friday": {Closed: true, Slots: []string{"09:00"}},
		},
	}
}

func newResolver(doc *models.Doctor, active map[string][]string) *DefaultResolver {
	doctors := &fakeDoctors{doctors: map[string]*models.Doctor{}}
	if doc != nil {
		doctors.doctors[doc.ID] = doc
	}
	if active == nil {
		active = map[string][]string{}
	}
	return &DefaultResolver{
		Doctors:      doctors,
		Reservations: &fakeReservations{active: active},
	}
}

func TestResolveReturnsConfiguredSlotsInOrder(t *testing.T) {
	r := newResolver(testDoctor(), nil)

	result, err := r.Resolve(context.Background(), "dr-1", mondayDate)
	require.NoError(t, err)
	assert.Empty(t, result.Reason)
	assert.Equal(t, []string{"09:00", "09:30", "10:00"}, result.Slots)
}

func TestResolveSubtractsReservedSlots(t *testing.T) {
	r := newResolver(testDoctor(), map[string][]string{
		"dr-1|" + mondayDate: {"09:30"},
	})

	result, err := r.Resolve(context.Background(), "dr-1", mondayDate)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00"}, result.Slots)
}

func TestResolveNormalizesLabelSpellings(t *testing.T) {
	doc := testDoctor()
	doc.Schedule["monday"] = models.DaySchedule{Slots: []string{"9:00 AM", "9:30 AM", "2:00 PM"}}
	r := newResolver(doc, map[string][]string{
		"dr-1|" + mondayDate: {"09:00"},
	})

	result, err := r.Resolve(context.Background(), "dr-1", mondayDate)
	require.NoError(t, err)
	// Output is canonical 24h form and "9:00 AM" aliases the reserved "09:00".
	assert.Equal(t, []string{"09:30", "14:00"}, result.Slots)
}

func TestResolveClosedDay(t *testing.T) {
	r := newResolver(testDoctor(), nil)

	// 2026-01-09 is a Friday, marked closed.
	result, err := r.Resolve(context.Background(), "dr-1", "2026-01-09")
	require.NoError(t, err)
	assert.Empty(t, result.Slots)
	assert.Equal(t, ReasonDoctorUnavailable, result.Reason)
}

func TestResolveDayWithoutEntry(t *testing.T) {
	r := newResolver(testDoctor(), nil)

	// 2026-01-06 is a Tuesday; no schedule entry means no slots.
	result, err := r.Resolve(context.Background(), "dr-1", "2026-01-06")
	require.NoError(t, err)
	assert.Empty(t, result.Slots)
	assert.Equal(t, ReasonDoctorUnavailable, result.Reason)
}

func TestResolveInactiveDoctor(t *testing.T) {
	doc := testDoctor()
	doc.Active = false
	r := newResolver(doc, nil)

	result, err := r.Resolve(context.Background(), "dr-1", mondayDate)
	require.NoError(t, err)
	assert.Empty(t, result.Slots)
	assert.Equal(t, ReasonDoctorInactive, result.Reason)
}

func TestResolveFullyBookedDay(t *testing.T) {
	r := newResolver(testDoctor(), map[string][]string{
		"dr-1|" + mondayDate: {"09:00", "09:30", "10:00"},
	})

	result, err := r.Resolve(context.Background(), "dr-1", mondayDate)
	require.NoError(t, err)
	assert.Empty(t, result.Slots)
	assert.Equal(t, ReasonFullyBooked, result.Reason)
}

func TestResolveUnknownDoctor(t *testing.T) {
	r := newResolver(nil, nil)

	_, err := r.Resolve(context.Background(), "ghost", mondayDate)
	assert.ErrorIs(t, err, doctorRepo.ErrNotFound)
}

func TestResolveInvalidDate(t *testing.T) {
	r := newResolver(testDoctor(), nil)

	_, err := r.Resolve(context.Background(), "dr-1", "05/01/2026")
	assert.Error(t, err)
}

func TestResolvePastDateStillResolves(t *testing.T) {
	// Callers filter past dates as a UX convenience; the resolver itself has
	// no temporal ordering constraint.
	r := newResolver(testDoctor(), nil)

	result, err := r.Resolve(context.Background(), "dr-1", "2015-06-01") // a past Monday
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "10:00"}, result.Slots)
}

func TestResolveIdempotentWithoutMutation(t *testing.T) {
	r := newResolver(testDoctor(), map[string][]string{
		"dr-1|" + mondayDate: {"10:00"},
	})

	first, err := r.Resolve(context.Background(), "dr-1", mondayDate)
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "dr-1", mondayDate)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestOffered(t *testing.T) {
	doc := testDoctor()
	monday, err := time.Parse("2006-01-02", mondayDate)
	require.NoError(t, err)

	assert.True(t, Offered(doc, monday, "09:30"))
	assert.False(t, Offered(doc, monday, "11:00"))

	friday, err := time.Parse("2006-01-02", "2026-01-09")
	require.NoError(t, err)
	assert.False(t, Offered(doc, friday, "09:00"))
}
