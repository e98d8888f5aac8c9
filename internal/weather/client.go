package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/alexivanou/wetter-proxy/internal/model"
	"go.uber.org/zap"
)

var (
	// ErrFetchFailed is returned when the provider could not be reached or answered non-2xx
	ErrFetchFailed = errors.New("failed to fetch weather")
	// ErrMalformedResponse is returned when the provider payload lacks a required field
	ErrMalformedResponse = errors.New("malformed upstream response")
)

// KeySource yields the provider API key for a single request
type KeySource func() string

// Client calls the weatherapi.com current conditions endpoint
type Client struct {
	baseURL    string
	apiKey     KeySource
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a weather client. httpClient and logger may be nil.
func NewClient(baseURL string, apiKey KeySource, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if apiKey == nil {
		apiKey = func() string { return "" }
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

// upstream payload; pointers distinguish absent fields from zero values
type currentResponse struct {
	Location *struct {
		Name    *string `json:"name"`
		Country *string `json:"country"`
	} `json:"location"`
	Current *struct {
		TempC     *float64 `json:"temp_c"`
		Condition *struct {
			Text *string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

// Current fetches current conditions for a city without air quality data
func (c *Client) Current(ctx context.Context, city string) (*model.Weather, error) {
	params := url.Values{}
	params.Set("key", c.apiKey())
	params.Set("q", city)
	params.Set("aqi", "no")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/current.json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error embeds the request URL, which carries the key
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("weather provider rejected request",
			zap.String("city", city),
			zap.Int("status", resp.StatusCode),
		)
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, ErrFetchFailed
	}

	var payload currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return payload.normalize()
}

func (p currentResponse) normalize() (*model.Weather, error) {
	switch {
	case p.Location == nil:
		return nil, fmt.Errorf("%w: missing location", ErrMalformedResponse)
	case p.Location.Name == nil:
		return nil, fmt.Errorf("%w: missing location.name", ErrMalformedResponse)
	case p.Location.Country == nil:
		return nil, fmt.Errorf("%w: missing location.country", ErrMalformedResponse)
	case p.Current == nil:
		return nil, fmt.Errorf("%w: missing current", ErrMalformedResponse)
	case p.Current.TempC == nil:
		return nil, fmt.Errorf("%w: missing current.temp_c", ErrMalformedResponse)
	case p.Current.Condition == nil || p.Current.Condition.Text == nil:
		return nil, fmt.Errorf("%w: missing current.condition.text", ErrMalformedResponse)
	}

	return &model.Weather{
		Location:  *p.Location.Name,
		Country:   *p.Location.Country,
		TempC:     *p.Current.TempC,
		Condition: *p.Current.Condition.Text,
	}, nil
}
