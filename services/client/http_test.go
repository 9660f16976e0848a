package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	doctorRepo "github.com/Jayr222/appointment-systemv2-sub002/database/repository/doctor"
	"github.com/Jayr222/appointment-systemv2-sub002/models"
	"github.com/Jayr222/appointment-systemv2-sub002/services/booking"
)

func TestAPIResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/slots", r.URL.Path)
		assert.Equal(t, "dr-1", r.URL.Query().Get("doctorId"))
		assert.Equal(t, "2026-01-05", r.URL.Query().Get("date"))
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"slots":   []string{"09:00", "09:30"},
		})
	}))
	defer srv.Close()

	api := NewAPI(srv.URL, "")
	result, err := api.Resolve(context.Background(), "dr-1", "2026-01-05")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30"}, result.Slots)
	assert.Empty(t, result.Reason)
}

func TestAPIResolveEmptyWithReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"slots":   []string{},
			"message": "doctor unavailable on this day",
		})
	}))
	defer srv.Close()

	api := NewAPI(srv.URL, "")
	result, err := api.Resolve(context.Background(), "dr-1", "2026-01-09")
	require.NoError(t, err)
	assert.Empty(t, result.Slots)
	assert.Equal(t, "doctor unavailable on this day", result.Reason)
}

func TestAPIResolveUnknownDoctor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "unknown doctor"})
	}))
	defer srv.Close()

	api := NewAPI(srv.URL, "")
	_, err := api.Resolve(context.Background(), "ghost", "2026-01-05")
	assert.ErrorIs(t, err, doctorRepo.ErrNotFound)
}

func TestAPIResolveUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	api := NewAPI(srv.URL, "")
	_, err := api.Resolve(context.Background(), "dr-1", "2026-01-05")
	be, ok := booking.AsBookingError(err)
	require.True(t, ok)
	assert.Equal(t, booking.CodeNetworkUnreachable, be.Code)
}

func TestAPIBookSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/appointments", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		var req models.BookingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "09:00", req.Slot)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.Reservation{
			ID:       "res-1",
			DoctorID: req.DoctorID,
			Date:     req.Date,
			Slot:     req.Slot,
			Status:   models.ReservationPending,
		})
	}))
	defer srv.Close()

	api := NewAPI(srv.URL, "tok-123")
	res, err := api.Book(context.Background(), models.BookingRequest{
		DoctorID: "dr-1", Date: "2026-01-05", Slot: "09:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "res-1", res.ID)
	assert.Equal(t, models.ReservationPending, res.Status)
}

func TestAPIBookErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{
			"error": "slot 09:00 is already booked",
			"code":  booking.CodeSlotTaken,
		})
	}))
	defer srv.Close()

	api := NewAPI(srv.URL, "tok-123")
	_, err := api.Book(context.Background(), models.BookingRequest{
		DoctorID: "dr-1", Date: "2026-01-05", Slot: "09:00",
	})
	be, ok := booking.AsBookingError(err)
	require.True(t, ok)
	assert.Equal(t, booking.CodeSlotTaken, be.Code)
	assert.Contains(t, be.Message, "09:00")
}

func TestAPIBookRetryAfterFromHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "17")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": "too many booking attempts",
			"code":  booking.CodeRateLimited,
		})
	}))
	defer srv.Close()

	api := NewAPI(srv.URL, "tok-123")
	_, err := api.Book(context.Background(), models.BookingRequest{
		DoctorID: "dr-1", Date: "2026-01-05", Slot: "09:00",
	})
	be, ok := booking.AsBookingError(err)
	require.True(t, ok)
	assert.Equal(t, booking.CodeRateLimited, be.Code)
	assert.Equal(t, 17*time.Second, be.RetryAfter)
}

func TestAPIBookUnparsableError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	api := NewAPI(srv.URL, "tok-123")
	_, err := api.Book(context.Background(), models.BookingRequest{
		DoctorID: "dr-1", Date: "2026-01-05", Slot: "09:00",
	})
	require.Error(t, err)
	_, ok := booking.AsBookingError(err)
	assert.False(t, ok, "a bodyless failure stays a plain error")
	assert.Contains(t, err.Error(), "502")
}

func TestAPIBookUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	api := NewAPI(srv.URL, "tok-123")
	_, err := api.Book(context.Background(), models.BookingRequest{
		DoctorID: "dr-1", Date: "2026-01-05", Slot: "09:00",
	})
	be, ok := booking.AsBookingError(err)
	require.True(t, ok)
	assert.Equal(t, booking.CodeNetworkUnreachable, be.Code)
}
