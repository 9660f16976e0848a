package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Jayr222/appointment-systemv2-sub002/services/realtime"
	"github.com/Jayr222/appointment-systemv2-sub002/utils"
)

// StreamHandler pushes availability-changed events to browsers over SSE.
type StreamHandler struct {
	Events realtime.Subscriber
	Logger *zap.Logger
}

func NewStreamHandler(events realtime.Subscriber, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{Events: events, Logger: logger}
}

// StreamSlotsHandler answers GET /api/slots/stream?doctorId=&date=. Events
// for other doctor/date pairs are filtered out server-side; payloads carry no
// slot detail, so receivers must re-query.
func (h *StreamHandler) StreamSlotsHandler(c *gin.Context) {
	doctorID := c.Query("doctorId")
	date := c.Query("date")
	if doctorID == "" || date == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", "doctorId and date are required")
		return
	}

	events, cancel, err := h.Events.Subscribe(c.Request.Context())
	if err != nil {
		h.Logger.Error("subscription failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to subscribe", err.Error())
		return
	}
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Flush()

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": ping\n\n")
			c.Writer.Flush()
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.DoctorID != doctorID || ev.Date != date {
				continue
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", realtime.EventAvailabilityUpdated, payload)
			c.Writer.Flush()
		}
	}
}
