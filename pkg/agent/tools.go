package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dineai/go-dineai/pkg/backend"
	"github.com/dineai/go-dineai/pkg/voice"
)

// Backend is the subset of the booking service the tools need.
type Backend interface {
	FetchWeather(ctx context.Context, date, location string) (*backend.WeatherResult, error)
	SubmitBooking(ctx context.Context, booking *backend.BookingRequest) (*backend.BookingResult, error)
}

// toolTimeout bounds a single backend call made from a tool handler.
const toolTimeout = 10 * time.Second

// Spoken fallbacks for weather failures. The model reads these out, so
// they must stay speakable and must steer toward the safe choice.
const (
	weatherUnavailable = "Weather service temporarily unavailable. Suggest indoor seating to be safe."
	weatherFetchFailed = "Could not fetch weather data. Recommend indoor seating to be safe."
)

// Tools returns the function tools exposed to the model: one to fetch
// weather for a booking date, one to persist a confirmed booking.
func Tools(b Backend) []voice.Tool {
	return []voice.Tool{
		{
			Name:        "get_weather",
			Description: "Fetch weather forecast for a booking date and get seating recommendation.",
			Parameters: map[string]any{
				"date": map[string]any{
					"type":        "string",
					"description": "The booking date in YYYY-MM-DD format (e.g., \"2026-02-07\")",
				},
				"location": map[string]any{
					"type":        "string",
					"description": "City name for weather lookup (default: Mumbai)",
				},
			},
			Required: []string{"date"},
			Handler: func(args map[string]any) (string, error) {
				return getWeather(b, args), nil
			},
		},
		{
			Name:        "create_booking",
			Description: "Create a restaurant booking and save it to the database. Call this function ONLY after the customer has confirmed all booking details.",
			Parameters: map[string]any{
				"customer_name": map[string]any{
					"type":        "string",
					"description": "Full name of the customer",
				},
				"number_of_guests": map[string]any{
					"type":        "integer",
					"description": "Number of people dining (1-20)",
				},
				"booking_date": map[string]any{
					"type":        "string",
					"description": "Date in YYYY-MM-DD format",
				},
				"booking_time": map[string]any{
					"type":        "string",
					"description": "Time in HH:MM format (e.g., \"19:00\" or \"7:00 PM\")",
				},
				"cuisine_preference": map[string]any{
					"type":        "string",
					"description": "Type of cuisine (Italian, Chinese, Indian, Mexican, Japanese, Thai, American)",
				},
				"seating_preference": map[string]any{
					"type":        "string",
					"description": "Either \"indoor\" or \"outdoor\"",
				},
				"special_requests": map[string]any{
					"type":        "string",
					"description": "Any special requests like birthday, anniversary, dietary restrictions",
				},
				"weather_condition": map[string]any{
					"type":        "string",
					"description": "The weather condition for the booking date",
				},
				"weather_temperature": map[string]any{
					"type":        "integer",
					"description": "Temperature in Celsius for the booking date",
				},
			},
			Required: []string{"customer_name", "number_of_guests", "booking_date", "booking_time", "cuisine_preference"},
			Handler: func(args map[string]any) (string, error) {
				return createBooking(b, args), nil
			},
		},
	}
}

// getWeather resolves the get_weather tool call. Failures never
// propagate as errors; the model receives a speakable fallback and the
// conversation continues.
func getWeather(b Backend, args map[string]any) string {
	ctx, cancel := context.WithTimeout(context.Background(), toolTimeout)
	defer cancel()

	date := stringArg(args, "date")
	location := stringArg(args, "location")

	w, err := b.FetchWeather(ctx, date, location)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			if apiErr.Message != "" {
				return "Could not fetch weather: " + apiErr.Message
			}
			return weatherUnavailable
		}
		return weatherFetchFailed
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Weather: %s, %d degrees Celsius.", w.Condition, w.Temperature)
	if w.Description != "" {
		fmt.Fprintf(&sb, " %s.", w.Description)
	}
	fmt.Fprintf(&sb, " Recommended seating: %s.", w.Recommendation)
	if w.Reason != "" {
		fmt.Fprintf(&sb, " %s", w.Reason)
	}
	if w.VoiceResponse != "" {
		fmt.Fprintf(&sb, " Suggested phrasing: %s", w.VoiceResponse)
	}
	return sb.String()
}

// createBooking resolves the create_booking tool call. A booking ID
// only ever comes from the backend; on any failure the model gets an
// error message and no ID.
func createBooking(b Backend, args map[string]any) string {
	ctx, cancel := context.WithTimeout(context.Background(), toolTimeout)
	defer cancel()

	req := &backend.BookingRequest{
		CustomerName:      stringArg(args, "customer_name"),
		NumberOfGuests:    intArg(args, "number_of_guests"),
		BookingDate:       stringArg(args, "booking_date"),
		BookingTime:       stringArg(args, "booking_time"),
		CuisinePreference: stringArg(args, "cuisine_preference"),
		SeatingPreference: stringArg(args, "seating_preference"),
		SpecialRequests:   stringArg(args, "special_requests"),
	}
	if req.SeatingPreference == "" {
		req.SeatingPreference = "indoor"
	}

	condition := stringArg(args, "weather_condition")
	temperature := intArg(args, "weather_temperature")
	req.WeatherInfo = backend.WeatherInfo{
		Condition:   condition,
		Temperature: temperature,
		Description: fmt.Sprintf("%s, %d°C", condition, temperature),
	}

	result, err := b.SubmitBooking(ctx, req)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			if apiErr.Message != "" {
				return "Failed to create booking: " + apiErr.Message
			}
			return "Booking service error. Please try again."
		}
		return "Failed to save booking: " + err.Error()
	}

	return fmt.Sprintf(
		"SUCCESS! Booking confirmed. Booking ID: %s. Customer: %s, %d guests, %s at %s, %s cuisine, %s seating.",
		result.BookingID,
		req.CustomerName,
		req.NumberOfGuests,
		req.BookingDate,
		req.BookingTime,
		req.CuisinePreference,
		req.SeatingPreference,
	)
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// intArg reads an integer argument. JSON numbers decode as float64.
func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
