package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexivanou/wetter-proxy/internal/model"
	"github.com/alexivanou/wetter-proxy/internal/weather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockWeatherFetcher struct {
	mock.Mock
}

func (m *MockWeatherFetcher) Current(ctx context.Context, city string) (*model.Weather, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Weather), args.Error(1)
}

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Suggest(ctx context.Context, query string) ([]model.Suggestion, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Suggestion), args.Error(1)
}

func TestService_Lookup(t *testing.T) {
	berlin := &model.Weather{Location: "Berlin", Country: "Germany", TempC: 18, Condition: "Cloudy"}

	tests := []struct {
		name        string
		city        string
		setupMocks  func(*MockWeatherFetcher)
		expected    *model.Weather
		expectedErr error
	}{
		{
			name: "successful lookup",
			city: "Berlin",
			setupMocks: func(f *MockWeatherFetcher) {
				f.On("Current", mock.Anything, "Berlin").Return(berlin, nil)
			},
			expected: berlin,
		},
		{
			name: "surrounding whitespace is trimmed",
			city: "  Berlin ",
			setupMocks: func(f *MockWeatherFetcher) {
				f.On("Current", mock.Anything, "Berlin").Return(berlin, nil)
			},
			expected: berlin,
		},
		{
			name:        "empty city",
			city:        "",
			expectedErr: ErrCityRequired,
		},
		{
			name:        "blank city",
			city:        "   ",
			expectedErr: ErrCityRequired,
		},
		{
			name: "upstream failure is passed through",
			city: "Atlantis",
			setupMocks: func(f *MockWeatherFetcher) {
				f.On("Current", mock.Anything, "Atlantis").Return(nil, weather.ErrFetchFailed)
			},
			expectedErr: weather.ErrFetchFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := new(MockWeatherFetcher)
			if tt.setupMocks != nil {
				tt.setupMocks(fetcher)
			}
			svc := NewService(fetcher, new(MockProvider), nil)

			result, err := svc.Lookup(context.Background(), tt.city)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
			fetcher.AssertExpectations(t)
		})
	}
}

func TestService_SuggestCities(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		setupMocks    func(*MockProvider)
		expected      []model.Suggestion
		expectedError string
	}{
		{
			name:  "successful search is deduplicated",
			query: "Ber",
			setupMocks: func(p *MockProvider) {
				p.On("Suggest", mock.Anything, "Ber").Return([]model.Suggestion{
					{City: "Berlin", Country: "Deutschland"},
					{City: "Berlin", Country: "Deutschland"},
					{City: "Bern", Country: "Schweiz"},
				}, nil)
			},
			expected: []model.Suggestion{
				{City: "Berlin", Country: "Deutschland"},
				{City: "Bern", Country: "Schweiz"},
			},
		},
		{
			name:  "two multibyte characters are enough",
			query: "Üb",
			setupMocks: func(p *MockProvider) {
				p.On("Suggest", mock.Anything, "Üb").Return([]model.Suggestion{
					{City: "Überlingen", Country: "Deutschland"},
				}, nil)
			},
			expected: []model.Suggestion{{City: "Überlingen", Country: "Deutschland"}},
		},
		{
			name:          "query too short",
			query:         "B",
			expectedError: "query must be at least 2 characters",
		},
		{
			name:          "empty query",
			query:         "",
			expectedError: "query parameter 'q' is required",
		},
		{
			name:  "provider failure",
			query: "Ber",
			setupMocks: func(p *MockProvider) {
				p.On("Suggest", mock.Anything, "Ber").Return(nil, errors.New("failed to fetch suggestions"))
			},
			expectedError: "failed to fetch suggestions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := new(MockProvider)
			if tt.setupMocks != nil {
				tt.setupMocks(provider)
			}
			svc := NewService(new(MockWeatherFetcher), provider, nil)

			resp, err := svc.SuggestCities(context.Background(), tt.query)

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.Nil(t, resp)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, resp.Results)
			}
			provider.AssertExpectations(t)
		})
	}
}

func TestIsInputError(t *testing.T) {
	assert.True(t, IsInputError(ErrCityRequired))
	assert.True(t, IsInputError(ErrQueryTooShort))
	assert.False(t, IsInputError(weather.ErrFetchFailed))
}
