package seeder

import (
	"context"
	"fmt"

	"github.com/alexivanou/wetter-proxy/internal/model"
	"github.com/alexivanou/wetter-proxy/internal/repository"
	"go.uber.org/zap"
)

// Result summarizes an import run
type Result struct {
	Countries           int
	Cities              int
	CityTranslations    int
	CountryTranslations int
}

// Seed loads the GeoNames dumps into the gazetteer tables
func Seed(ctx context.Context, repos *repository.Container, parser *Parser, logger *zap.Logger) (Result, error) {
	var res Result

	logger.Info("Parsing countries...")
	countries, err := parser.ParseCountries()
	if err != nil {
		return res, fmt.Errorf("failed to parse countries: %w", err)
	}

	logger.Info("Parsing cities...")
	cities, err := parser.ParseCities()
	if err != nil {
		return res, fmt.Errorf("failed to parse cities: %w", err)
	}

	logger.Info("Inserting countries...", zap.Int("count", len(countries)))
	if err := repos.Country.BulkInsertCountries(ctx, countries); err != nil {
		return res, fmt.Errorf("failed to insert countries: %w", err)
	}
	res.Countries = len(countries)

	logger.Info("Inserting cities...", zap.Int("count", len(cities)))
	if err := repos.City.BulkInsertCities(ctx, cities); err != nil {
		return res, fmt.Errorf("failed to insert cities: %w", err)
	}
	res.Cities = len(cities)

	logger.Info("Parsing alternate names (streaming mode)...")
	err = parser.ProcessAlternateNames(
		NewIndex(cities, countries),
		func(batch []model.CityTranslation) error {
			if err := repos.Translation.BulkInsertCityTranslations(ctx, batch); err != nil {
				return fmt.Errorf("failed to insert city translations batch: %w", err)
			}
			res.CityTranslations += len(batch)
			return nil
		},
		func(batch []model.CountryTranslation) error {
			if err := repos.Translation.BulkInsertCountryTranslations(ctx, batch); err != nil {
				return fmt.Errorf("failed to insert country translations batch: %w", err)
			}
			res.CountryTranslations += len(batch)
			return nil
		},
	)
	if err != nil {
		return res, fmt.Errorf("failed to process alternate names: %w", err)
	}

	logger.Info("Processed translations",
		zap.Int("city_translations", res.CityTranslations),
		zap.Int("country_translations", res.CountryTranslations),
	)
	return res, nil
}
