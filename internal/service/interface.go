package service

import (
	"context"

	"github.com/alexivanou/wetter-proxy/internal/model"
)

// ServiceInterface defines the service interface for testing
type ServiceInterface interface {
	Lookup(ctx context.Context, city string) (*model.Weather, error)
	SuggestCities(ctx context.Context, query string) (*model.SuggestResponse, error)
}

// WeatherFetcher fetches normalized current conditions for a city
type WeatherFetcher interface {
	Current(ctx context.Context, city string) (*model.Weather, error)
}
