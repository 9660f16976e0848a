package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	reservationRepo "github.com/Jayr222/appointment-systemv2-sub002/database/repository/reservation"
	"github.com/Jayr222/appointment-systemv2-sub002/models"
	"github.com/Jayr222/appointment-systemv2-sub002/services/booking"
	"github.com/Jayr222/appointment-systemv2-sub002/utils"
)

// BookingHandler serves appointment creation, cancellation, and listing.
type BookingHandler struct {
	Coordinator  booking.Coordinator
	Reservations reservationRepo.ReservationRepository
	Logger       *zap.Logger
}

func NewBookingHandler(coordinator booking.Coordinator, reservations reservationRepo.ReservationRepository, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Coordinator: coordinator, Reservations: reservations, Logger: logger}
}

// BookAppointmentHandler answers POST /api/appointments. The patient identity
// comes from the session middleware, never the request body.
func (h *BookingHandler) BookAppointmentHandler(c *gin.Context) {
	var input struct {
		DoctorID string `json:"doctorId" binding:"required"`
		Date     string `json:"date" binding:"required"`
		Slot     string `json:"slot" binding:"required"`
		Reason   string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	patientID := c.GetString("patientID")
	if patientID == "" {
		utils.JSONError(c, http.StatusUnauthorized, "missing patient identity", "")
		return
	}

	res, err := h.Coordinator.Book(c.Request.Context(), models.BookingRequest{
		DoctorID:  input.DoctorID,
		Date:      input.Date,
		Slot:      input.Slot,
		PatientID: patientID,
		Reason:    input.Reason,
	})
	if err != nil {
		h.writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

// CancelAppointmentHandler answers POST /api/appointments/:id/cancel. Only
// the reserving patient may release the slot here.
func (h *BookingHandler) CancelAppointmentHandler(c *gin.Context) {
	reservationID := c.Param("id")
	patientID := c.GetString("patientID")

	res, err := h.Reservations.GetByID(c.Request.Context(), reservationID)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "reservation not found", reservationID)
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to load reservation", err.Error())
		return
	}
	if res.PatientID != patientID {
		utils.JSONError(c, http.StatusForbidden, "reservation belongs to another patient", "")
		return
	}

	h.Logger.Info("cancel requested",
		zap.String("reservationID", reservationID), zap.String("patientID", patientID))

	if err := h.Coordinator.Cancel(c.Request.Context(), reservationID); err != nil {
		if errors.Is(err, reservationRepo.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "reservation not found", reservationID)
			return
		}
		h.Logger.Error("cancellation failed", zap.String("reservationID", reservationID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to cancel reservation", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetMyAppointmentsHandler answers GET /api/appointments, listing the
// authenticated patient's reservations.
func (h *BookingHandler) GetMyAppointmentsHandler(c *gin.Context) {
	patientID := c.GetString("patientID")
	if patientID == "" {
		utils.JSONError(c, http.StatusUnauthorized, "missing patient identity", "")
		return
	}

	reservations, err := h.Reservations.ListByPatient(c.Request.Context(), patientID)
	if err != nil {
		h.Logger.Error("failed to list reservations", zap.String("patientID", patientID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to list appointments", err.Error())
		return
	}
	if reservations == nil {
		reservations = []models.Reservation{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "appointments": reservations})
}

func (h *BookingHandler) writeBookingError(c *gin.Context, err error) {
	be, ok := booking.AsBookingError(err)
	if !ok {
		h.Logger.Error("booking failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to book appointment", err.Error())
		return
	}

	body := gin.H{"error": be.Message, "code": be.Code}
	status := http.StatusBadRequest
	switch be.Code {
	case booking.CodeDoctorUnavailable:
		status = http.StatusUnprocessableEntity
	case booking.CodeSlotTaken:
		status = http.StatusConflict
	case booking.CodeRateLimited:
		status = http.StatusTooManyRequests
		seconds := int(be.RetryAfter.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		body["retryAfter"] = seconds
		c.Header("Retry-After", fmt.Sprintf("%d", seconds))
	}
	c.JSON(status, body)
}
