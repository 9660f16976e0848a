package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	doctorRepo "github.com/Jayr222/appointment-systemv2-sub002/database/repository/doctor"
	"github.com/Jayr222/appointment-systemv2-sub002/services/availability"
)

type stubResolver struct {
	result availability.Result
	err    error
}

func (s *stubResolver) Resolve(context.Context, string, string) (availability.Result, error) {
	return s.result, s.err
}

func slotsRouter(resolver availability.Resolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewSlotsHandler(resolver, zap.NewNop())
	r.GET("/api/slots", h.GetSlotsHandler)
	return r
}

func getSlots(t *testing.T, r *gin.Engine, query string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/slots"+query, nil)
	r.ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestGetSlotsReturnsAvailability(t *testing.T) {
	r := slotsRouter(&stubResolver{result: availability.Result{Slots: []string{"09:00", "09:30"}}})

	w, body := getSlots(t, r, "?doctorId=dr-1&date=2026-01-05")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{"09:00", "09:30"}, body["slots"])
	assert.NotContains(t, body, "message")
}

func TestGetSlotsEmptyWithMessage(t *testing.T) {
	r := slotsRouter(&stubResolver{result: availability.Result{Reason: availability.ReasonDoctorUnavailable}})

	w, body := getSlots(t, r, "?doctorId=dr-1&date=2026-01-09")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{}, body["slots"], "empty availability still serializes a slots array")
	assert.Equal(t, availability.ReasonDoctorUnavailable, body["message"])
}

func TestGetSlotsUnknownDoctor(t *testing.T) {
	r := slotsRouter(&stubResolver{err: doctorRepo.ErrNotFound})

	w, body := getSlots(t, r, "?doctorId=ghost&date=2026-01-05")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "unknown doctor", body["message"])
}

func TestGetSlotsMissingParams(t *testing.T) {
	r := slotsRouter(&stubResolver{})

	w, _ := getSlots(t, r, "?doctorId=dr-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = getSlots(t, r, "?date=2026-01-05")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSlotsMalformedDate(t *testing.T) {
	r := slotsRouter(&stubResolver{})

	w, _ := getSlots(t, r, "?doctorId=dr-1&date=05/01/2026")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
