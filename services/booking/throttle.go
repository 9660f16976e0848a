package booking

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle limits booking attempts per patient. It is a UX throttle, not a
// dedup key: each allowed call is a new logical attempt.
type Throttle struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewThrottle allows perMin attempts per patient per minute with the given
// burst capacity.
func NewThrottle(perMin, burst int) *Throttle {
	if perMin <= 0 {
		perMin = 6
	}
	if burst <= 0 {
		burst = 1
	}
	return &Throttle{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(time.Minute / time.Duration(perMin)),
		burst:    burst,
	}
}

func (t *Throttle) limiter(patientID string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	lim, ok := t.limiters[patientID]
	if !ok {
		lim = rate.NewLimiter(t.limit, t.burst)
		t.limiters[patientID] = lim
	}
	return lim
}

// Take consumes one attempt for the patient. A zero return means the attempt
// may proceed; otherwise the caller must wait out the returned cooldown and
// no attempt was consumed.
func (t *Throttle) Take(patientID string) time.Duration {
	res := t.limiter(patientID).Reserve()
	if delay := res.Delay(); delay > 0 {
		res.Cancel()
		// Round up so the client never retries a hair early.
		return delay.Truncate(time.Second) + time.Second
	}
	return 0
}
