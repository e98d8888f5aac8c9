package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/alexivanou/wetter-proxy/internal/model"
)

// APIError is a non-2xx answer from the proxy
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("proxy returned status %d", e.Status)
	}
	return e.Message
}

// ProxyClient talks to the weather proxy's HTTP API
type ProxyClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewProxyClient(baseURL string, httpClient *http.Client) *ProxyClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ProxyClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// Weather calls GET /api/weather
func (c *ProxyClient) Weather(ctx context.Context, city string) (*model.Weather, error) {
	var result model.Weather
	if err := c.get(ctx, "/api/weather?city="+url.QueryEscape(city), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Suggest calls GET /api/suggest
func (c *ProxyClient) Suggest(ctx context.Context, query string) ([]model.Suggestion, error) {
	var result model.SuggestResponse
	if err := c.get(ctx, "/api/suggest?q="+url.QueryEscape(query), &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

func (c *ProxyClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var body model.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&body) == nil {
			apiErr.Message = body.Error
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode proxy response: %w", err)
	}
	return nil
}
