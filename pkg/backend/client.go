// Package backend is the HTTP client for the booking/weather service.
// It exposes exactly two operations: fetch weather for a booking date
// and submit a finished booking. The backend owns all business rules;
// this client only moves JSON.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dineai/go-dineai/internal/httpc"
)

// DefaultLocation is the city used when a weather lookup has no location.
const DefaultLocation = "Mumbai"

// Client calls the booking backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option is a functional option for configuring the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpc.Client,
		logger:  slog.Default().With("component", "backend.client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchWeather gets the forecast and seating suggestion for a date.
// An empty location falls back to DefaultLocation.
func (c *Client) FetchWeather(ctx context.Context, date, location string) (*WeatherResult, error) {
	if location == "" {
		location = DefaultLocation
	}

	start := time.Now()

	q := url.Values{}
	q.Set("date", date)
	q.Set("location", location)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, wrapRequest("build weather request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, wrapRequest("fetch weather", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	var body weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, wrapRequest("decode weather response", err)
	}
	if !body.Success {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: body.Error}
	}

	result := &WeatherResult{
		Condition:      body.Data.Weather.Condition,
		Temperature:    body.Data.Weather.Temperature,
		Description:    body.Data.Weather.Description,
		Recommendation: body.Data.SeatingSuggestion.Recommendation,
		Reason:         body.Data.SeatingSuggestion.Reason,
		VoiceResponse:  body.Data.SeatingSuggestion.VoiceResponse,
	}
	if result.Condition == "" {
		result.Condition = "Unknown"
	}
	if result.Recommendation == "" {
		result.Recommendation = "indoor"
	}

	c.logger.Info("weather fetched",
		"date", date,
		"location", location,
		"condition", result.Condition,
		"temperature", result.Temperature,
		"recommendation", result.Recommendation,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}

// SubmitBooking posts a completed booking to the backend.
// Each call is an independent request; identical submissions are not
// deduplicated here.
func (c *Client) SubmitBooking(ctx context.Context, booking *BookingRequest) (*BookingResult, error) {
	start := time.Now()

	payload, err := json.Marshal(booking)
	if err != nil {
		return nil, wrapRequest("marshal booking", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/bookings", strings.NewReader(string(payload)))
	if err != nil {
		return nil, wrapRequest("build booking request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, wrapRequest("submit booking", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	var body bookingResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, wrapRequest("decode booking response", err)
	}
	if !body.Success {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: body.Error}
	}
	if body.Data.BookingID == "" {
		return nil, wrapRequest("submit booking", fmt.Errorf("backend returned no booking ID"))
	}

	c.logger.Info("booking created",
		"booking_id", body.Data.BookingID,
		"customer", booking.CustomerName,
		"guests", booking.NumberOfGuests,
		"date", booking.BookingDate,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	return &BookingResult{BookingID: body.Data.BookingID}, nil
}
