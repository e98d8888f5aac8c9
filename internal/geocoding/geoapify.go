package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/alexivanou/wetter-proxy/internal/config"
	"github.com/alexivanou/wetter-proxy/internal/model"
	"go.uber.org/zap"
)

// GeoapifyClient queries the Geoapify autocomplete API
type GeoapifyClient struct {
	cfg        config.GeocodingConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewGeoapifyClient creates a client; httpClient and logger may be nil
func NewGeoapifyClient(cfg config.GeocodingConfig, httpClient *http.Client, logger *zap.Logger) *GeoapifyClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeoapifyClient{cfg: cfg, httpClient: httpClient, logger: logger}
}

type autocompleteResponse struct {
	Features []struct {
		Properties struct {
			City    string `json:"city"`
			Name    string `json:"name"`
			Country string `json:"country"`
		} `json:"properties"`
	} `json:"features"`
}

// Suggest returns deduplicated city suggestions for a text prefix
func (c *GeoapifyClient) Suggest(ctx context.Context, query string) ([]model.Suggestion, error) {
	params := url.Values{}
	params.Set("text", query)
	params.Set("type", c.cfg.Type)
	params.Set("limit", strconv.Itoa(c.cfg.Limit))
	params.Set("lang", c.cfg.Lang)
	params.Set("apiKey", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v1/geocode/autocomplete?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("geocoding provider rejected request", zap.Int("status", resp.StatusCode))
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, ErrFetchFailed
	}

	var payload autocompleteResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	suggestions := make([]model.Suggestion, 0, len(payload.Features))
	for _, f := range payload.Features {
		city := f.Properties.City
		if city == "" {
			city = f.Properties.Name
		}
		if city == "" {
			continue
		}
		suggestions = append(suggestions, model.Suggestion{City: city, Country: f.Properties.Country})
	}

	return Dedupe(suggestions), nil
}
