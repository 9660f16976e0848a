package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Jayr222/appointment-systemv2-sub002/models"
	"github.com/Jayr222/appointment-systemv2-sub002/services/availability"
	"github.com/Jayr222/appointment-systemv2-sub002/services/booking"
	doctorRepo "github.com/Jayr222/appointment-systemv2-sub002/database/repository/doctor"
)

// API is an HTTP-backed resolver and booker for front ends talking to a
// remote portal instance. Transport failures are classified as
// network-unreachable so the session can surface a distinct retryable notice.
type API struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewAPI(baseURL, token string) *API {
	return &API{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

var (
	_ availability.Resolver = (*API)(nil)
	_ Booker                = (*API)(nil)
)

type slotsResponse struct {
	Success bool     `json:"success"`
	Slots   []string `json:"slots"`
	Message string   `json:"message,omitempty"`
}

type bookingErrorBody struct {
	Error      string `json:"error"`
	Code       string `json:"code"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

func netErr(err error) *booking.BookingError {
	return &booking.BookingError{
		Code:    booking.CodeNetworkUnreachable,
		Message: fmt.Sprintf("booking service unreachable: %v", err),
	}
}

func (a *API) Resolve(ctx context.Context, doctorID, date string) (availability.Result, error) {
	endpoint := fmt.Sprintf("%s/api/slots?doctorId=%s&date=%s",
		a.BaseURL, url.QueryEscape(doctorID), url.QueryEscape(date))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return availability.Result{}, err
	}

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return availability.Result{}, netErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return availability.Result{}, doctorRepo.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return availability.Result{}, fmt.Errorf("slots query failed with status %d", resp.StatusCode)
	}

	var body slotsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return availability.Result{}, fmt.Errorf("decode slots response: %w", err)
	}
	return availability.Result{Slots: body.Slots, Reason: body.Message}, nil
}

func (a *API) Book(ctx context.Context, breq models.BookingRequest) (*models.Reservation, error) {
	payload, err := json.Marshal(breq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.BaseURL+"/api/appointments", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return nil, netErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK {
		var res models.Reservation
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			return nil, fmt.Errorf("decode reservation: %w", err)
		}
		return &res, nil
	}

	var body bookingErrorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Code == "" {
		return nil, fmt.Errorf("booking failed with status %d", resp.StatusCode)
	}

	be := &booking.BookingError{Code: body.Code, Message: body.Error}
	if body.Code == booking.CodeRateLimited {
		retry := body.RetryAfter
		if retry <= 0 {
			if header, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
				retry = header
			}
		}
		be.RetryAfter = time.Duration(retry) * time.Second
	}
	return nil, be
}
