package backend

// WeatherResult is the normalized weather summary for a booking date.
type WeatherResult struct {
	// Condition is the forecast condition (e.g. "Clear", "Rain").
	Condition string

	// Temperature is the forecast temperature in Celsius.
	Temperature int

	// Description is the backend's human-readable forecast text.
	Description string

	// Recommendation is the suggested seating: "indoor" or "outdoor".
	Recommendation string

	// Reason explains the seating recommendation.
	Reason string

	// VoiceResponse is suggested spoken phrasing for the agent.
	VoiceResponse string
}

// WeatherInfo is the weather snapshot attached to a booking.
type WeatherInfo struct {
	Condition   string `json:"condition"`
	Temperature int    `json:"temperature"`
	Description string `json:"description"`
}

// BookingRequest holds the fully collected booking fields.
// The backend owns validation; nothing is enforced here.
type BookingRequest struct {
	CustomerName      string      `json:"customerName"`
	NumberOfGuests    int         `json:"numberOfGuests"`
	BookingDate       string      `json:"bookingDate"`
	BookingTime       string      `json:"bookingTime"`
	CuisinePreference string      `json:"cuisinePreference"`
	SeatingPreference string      `json:"seatingPreference"`
	SpecialRequests   string      `json:"specialRequests"`
	WeatherInfo       WeatherInfo `json:"weatherInfo"`
}

// BookingResult is a confirmed booking. The BookingID is always
// backend-issued; this client never fabricates one.
type BookingResult struct {
	BookingID string
}

// Wire envelopes. The backend wraps every response in {success, data, error}.

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type weatherResponse struct {
	envelope
	Data struct {
		Weather struct {
			Condition   string `json:"condition"`
			Temperature int    `json:"temperature"`
			Description string `json:"description"`
		} `json:"weather"`
		SeatingSuggestion struct {
			Recommendation string `json:"recommendation"`
			Reason         string `json:"reason"`
			VoiceResponse  string `json:"voiceResponse"`
		} `json:"seatingSuggestion"`
	} `json:"data"`
}

type bookingResponse struct {
	envelope
	Data struct {
		BookingID string `json:"bookingId"`
	} `json:"data"`
}
