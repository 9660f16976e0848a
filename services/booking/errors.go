package booking

import (
	"errors"
	"fmt"
	"time"
)

// Rejection codes for a booking attempt.
const (
	CodeInvalid            = "invalid"
	CodeDoctorUnavailable  = "doctor_unavailable"
	CodeSlotTaken          = "slot_taken"
	CodeRateLimited        = "rate_limited"
	CodeNetworkUnreachable = "network_unreachable"
)

// BookingError is a rejected booking attempt. RetryAfter is set only for
// CodeRateLimited and tells the caller how long to hold off before retrying.
type BookingError struct {
	Code       string
	Message    string
	RetryAfter time.Duration
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AsBookingError unwraps err into a *BookingError if it is one.
func AsBookingError(err error) (*BookingError, bool) {
	var be *BookingError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

func errInvalid(format string, args ...any) *BookingError {
	return &BookingError{Code: CodeInvalid, Message: fmt.Sprintf(format, args...)}
}

func errDoctorUnavailable(msg string) *BookingError {
	return &BookingError{Code: CodeDoctorUnavailable, Message: msg}
}

func errSlotTaken(slot string) *BookingError {
	return &BookingError{
		Code:    CodeSlotTaken,
		Message: fmt.Sprintf("slot %s has just been taken, please pick another", slot),
	}
}

func errRateLimited(retryAfter time.Duration) *BookingError {
	return &BookingError{
		Code:       CodeRateLimited,
		Message:    fmt.Sprintf("too many booking attempts, retry in %s", retryAfter),
		RetryAfter: retryAfter,
	}
}
