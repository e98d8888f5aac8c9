package model

// Weather is the normalized current-conditions object returned to clients
type Weather struct {
	Location  string  `json:"location"`
	Country   string  `json:"country"`
	TempC     float64 `json:"tempC"`
	Condition string  `json:"condition"`
}

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Suggestion is a single autocomplete entry
type Suggestion struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// SuggestResponse represents the response for city suggestions
type SuggestResponse struct {
	Results []Suggestion `json:"results"`
}
