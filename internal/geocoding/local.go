package geocoding

import (
	"context"
	"fmt"

	"github.com/alexivanou/wetter-proxy/internal/model"
	"github.com/alexivanou/wetter-proxy/internal/repository"
)

// LocalProvider answers suggestions from the GeoNames gazetteer
type LocalProvider struct {
	cities repository.CityRepository
	lang   string
	limit  int
}

func NewLocalProvider(cities repository.CityRepository, lang string, limit int) *LocalProvider {
	return &LocalProvider{cities: cities, lang: lang, limit: limit}
}

func (p *LocalProvider) Suggest(ctx context.Context, query string) ([]model.Suggestion, error) {
	results, err := p.cities.SearchCitiesWithLang(ctx, query, p.lang, p.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search gazetteer: %w", err)
	}

	suggestions := make([]model.Suggestion, 0, len(results))
	for _, r := range results {
		suggestions = append(suggestions, model.Suggestion{City: r.Name, Country: r.Country})
	}
	return Dedupe(suggestions), nil
}
