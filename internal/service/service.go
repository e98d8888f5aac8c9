package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alexivanou/wetter-proxy/internal/geocoding"
	"github.com/alexivanou/wetter-proxy/internal/model"
	"go.uber.org/zap"
)

// MinQueryLength is the shortest text, in characters, that yields suggestions
const MinQueryLength = 2

var (
	ErrCityRequired  = errors.New("city parameter is required")
	ErrQueryRequired = errors.New("query parameter 'q' is required")
	ErrQueryTooShort = fmt.Errorf("query must be at least %d characters", MinQueryLength)
)

// Service provides the weather lookup and suggestion logic behind the API
type Service struct {
	weather   WeatherFetcher
	geocoding geocoding.Provider
	logger    *zap.Logger
}

// NewService creates a new service instance
func NewService(weather WeatherFetcher, geo geocoding.Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		weather:   weather,
		geocoding: geo,
		logger:    logger,
	}
}

// Lookup fetches current conditions for a city in a single upstream round trip
func (s *Service) Lookup(ctx context.Context, city string) (*model.Weather, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, ErrCityRequired
	}

	result, err := s.weather.Current(ctx, city)
	if err != nil {
		s.logger.Warn("weather lookup failed", zap.String("city", city), zap.Error(err))
		return nil, err
	}
	return result, nil
}

// SuggestCities returns deduplicated suggestions for a city prefix
func (s *Service) SuggestCities(ctx context.Context, query string) (*model.SuggestResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil, ErrQueryTooShort
	}

	suggestions, err := s.geocoding.Suggest(ctx, query)
	if err != nil {
		s.logger.Warn("city suggestion failed", zap.String("query", query), zap.Error(err))
		return nil, err
	}

	return &model.SuggestResponse{Results: geocoding.Dedupe(suggestions)}, nil
}

// IsInputError reports whether err was caused by the caller's input
func IsInputError(err error) bool {
	return errors.Is(err, ErrCityRequired) || errors.Is(err, ErrQueryRequired) || errors.Is(err, ErrQueryTooShort)
}
