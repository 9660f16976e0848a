package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Jayr222/appointment-systemv2-sub002/models"
	"github.com/Jayr222/appointment-systemv2-sub002/services/realtime"
)

func streamRouter(events realtime.Subscriber) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewStreamHandler(events, zap.NewNop())
	r.GET("/api/slots/stream", h.StreamSlotsHandler)
	return r
}

func TestStreamRequiresParams(t *testing.T) {
	r := streamRouter(realtime.NewMemoryChannel())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/slots/stream?doctorId=dr-1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// signalSubscriber closes subscribed once the handler is actually listening,
// so tests can publish without racing the subscription.
type signalSubscriber struct {
	inner      realtime.Subscriber
	subscribed chan struct{}
}

func (s *signalSubscriber) Subscribe(ctx context.Context) (<-chan models.AvailabilityEvent, func(), error) {
	events, cancel, err := s.inner.Subscribe(ctx)
	if err == nil {
		close(s.subscribed)
	}
	return events, cancel, err
}

func TestStreamDeliversMatchingEvents(t *testing.T) {
	channel := realtime.NewMemoryChannel()
	sub := &signalSubscriber{inner: channel, subscribed: make(chan struct{})}
	r := streamRouter(sub)

	ctx, cancel := context.WithCancel(context.Background())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/slots/stream?doctorId=dr-1&date=2026-01-05", nil)
	req = req.WithContext(ctx)

	done := make(chan struct{})
	go func() {
		r.ServeHTTP(w, req)
		close(done)
	}()

	select {
	case <-sub.subscribed:
	case <-time.After(3 * time.Second):
		t.Fatal("handler never subscribed")
	}

	_ = channel.Publish(ctx, models.AvailabilityEvent{ID: "ev-match", DoctorID: "dr-1", Date: "2026-01-05"})
	_ = channel.Publish(ctx, models.AvailabilityEvent{ID: "ev-other", DoctorID: "dr-2", Date: "2026-01-05"})

	// Let the handler drain its buffer before tearing the stream down.
	time.Sleep(200 * time.Millisecond)
	cancel()
	<-done

	body := w.Body.String()
	assert.Contains(t, body, "event: "+realtime.EventAvailabilityUpdated)
	assert.Contains(t, body, "ev-match")
	assert.NotContains(t, body, "ev-other", "events for other doctors must be filtered out")
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
}
