package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	doctorRepo "github.com/Jayr222/appointment-systemv2-sub002/database/repository/doctor"
	"github.com/Jayr222/appointment-systemv2-sub002/services/availability"
	"github.com/Jayr222/appointment-systemv2-sub002/utils"
)

// SlotsHandler serves the availability query.
type SlotsHandler struct {
	Resolver availability.Resolver
	Logger   *zap.Logger
}

func NewSlotsHandler(resolver availability.Resolver, logger *zap.Logger) *SlotsHandler {
	return &SlotsHandler{Resolver: resolver, Logger: logger}
}

// GetSlotsHandler answers GET /api/slots?doctorId=&date=. An empty slot set
// with a message is a normal response, not an error.
func (h *SlotsHandler) GetSlotsHandler(c *gin.Context) {
	doctorID := c.Query("doctorId")
	date := c.Query("date")
	if doctorID == "" || date == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", "doctorId and date are required")
		return
	}
	if _, err := utils.ParseDate(date); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", "date must be formatted YYYY-MM-DD")
		return
	}

	result, err := h.Resolver.Resolve(c.Request.Context(), doctorID, date)
	if err != nil {
		if errors.Is(err, doctorRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"slots":   []string{},
				"message": "unknown doctor",
			})
			return
		}
		h.Logger.Error("slot resolution failed",
			zap.String("doctorID", doctorID), zap.String("date", date), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to resolve availability", err.Error())
		return
	}

	resp := gin.H{"success": true, "slots": result.Slots}
	if result.Slots == nil {
		resp["slots"] = []string{}
	}
	if result.Reason != "" {
		resp["message"] = result.Reason
	}
	c.JSON(http.StatusOK, resp)
}
