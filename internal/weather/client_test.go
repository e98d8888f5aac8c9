package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexivanou/wetter-proxy/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUpstream(t *testing.T, status int, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Current(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		expected    *model.Weather
		expectedErr error
	}{
		{
			name:   "successful response",
			status: http.StatusOK,
			body:   `{"location":{"name":"Berlin","country":"Germany"},"current":{"temp_c":18,"condition":{"text":"Cloudy"}}}`,
			expected: &model.Weather{
				Location:  "Berlin",
				Country:   "Germany",
				TempC:     18,
				Condition: "Cloudy",
			},
		},
		{
			name:   "zero temperature is valid",
			status: http.StatusOK,
			body:   `{"location":{"name":"Oslo","country":"Norway"},"current":{"temp_c":0,"condition":{"text":"Snow"}}}`,
			expected: &model.Weather{
				Location:  "Oslo",
				Country:   "Norway",
				TempC:     0,
				Condition: "Snow",
			},
		},
		{
			name:        "upstream not found",
			status:      http.StatusBadRequest,
			body:        `{"error":{"code":1006,"message":"No matching location found."}}`,
			expectedErr: ErrFetchFailed,
		},
		{
			name:        "upstream unauthorized",
			status:      http.StatusUnauthorized,
			body:        `not even json`,
			expectedErr: ErrFetchFailed,
		},
		{
			name:        "missing condition",
			status:      http.StatusOK,
			body:        `{"location":{"name":"Berlin","country":"Germany"},"current":{"temp_c":18}}`,
			expectedErr: ErrMalformedResponse,
		},
		{
			name:        "missing temperature",
			status:      http.StatusOK,
			body:        `{"location":{"name":"Berlin","country":"Germany"},"current":{"condition":{"text":"Cloudy"}}}`,
			expectedErr: ErrMalformedResponse,
		},
		{
			name:        "missing location",
			status:      http.StatusOK,
			body:        `{"current":{"temp_c":18,"condition":{"text":"Cloudy"}}}`,
			expectedErr: ErrMalformedResponse,
		},
		{
			name:        "invalid json",
			status:      http.StatusOK,
			body:        `<html>`,
			expectedErr: ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := newUpstream(t, tt.status, tt.body, nil)
			client := NewClient(upstream.URL, func() string { return "secret" }, upstream.Client(), nil)

			result, err := client.Current(context.Background(), "Berlin")

			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestClient_Current_RequestShape(t *testing.T) {
	calls := 0
	upstream := newUpstream(t, http.StatusOK,
		`{"location":{"name":"São Paulo","country":"Brazil"},"current":{"temp_c":25.5,"condition":{"text":"Sunny"}}}`,
		func(r *http.Request) {
			calls++
			assert.Equal(t, "/v1/current.json", r.URL.Path)
			assert.Equal(t, fmt.Sprintf("key-%d", calls), r.URL.Query().Get("key"))
			assert.Equal(t, "São Paulo", r.URL.Query().Get("q"))
			assert.Equal(t, "no", r.URL.Query().Get("aqi"))
		})

	keys := 0
	client := NewClient(upstream.URL, func() string {
		keys++
		return fmt.Sprintf("key-%d", keys)
	}, upstream.Client(), nil)

	_, err := client.Current(context.Background(), "São Paulo")
	require.NoError(t, err)
	_, err = client.Current(context.Background(), "São Paulo")
	require.NoError(t, err)

	assert.Equal(t, 2, keys, "key must be read on every call")
}

func TestClient_Current_NetworkErrorHidesKey(t *testing.T) {
	upstream := newUpstream(t, http.StatusOK, `{}`, nil)
	baseURL := upstream.URL
	upstream.Close()

	client := NewClient(baseURL, func() string { return "top-secret" }, nil, nil)

	_, err := client.Current(context.Background(), "Berlin")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.False(t, strings.Contains(err.Error(), "top-secret"))
}
