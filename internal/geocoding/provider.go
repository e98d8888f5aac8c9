package geocoding

import (
	"context"
	"errors"

	"github.com/alexivanou/wetter-proxy/internal/model"
)

var (
	ErrFetchFailed       = errors.New("failed to fetch suggestions")
	ErrMalformedResponse = errors.New("malformed geocoding response")
)

// Provider resolves a partial city name into suggestions
type Provider interface {
	Suggest(ctx context.Context, query string) ([]model.Suggestion, error)
}

type suggestionKey struct {
	city    string
	country string
}

// Dedupe drops repeated (city, country) pairs, keeping the first occurrence
func Dedupe(suggestions []model.Suggestion) []model.Suggestion {
	seen := make(map[suggestionKey]struct{}, len(suggestions))
	result := make([]model.Suggestion, 0, len(suggestions))
	for _, s := range suggestions {
		key := suggestionKey{city: s.City, country: s.Country}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, s)
	}
	return result
}
