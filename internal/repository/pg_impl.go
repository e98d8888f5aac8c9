package repository

import (
	"context"

	"github.com/alexivanou/wetter-proxy/internal/model"
	"github.com/jmoiron/sqlx"
)

// --- PostgreSQL Implementation ---

type pgCityRepository struct {
	db *sqlx.DB
}

func (r *pgCityRepository) SearchCitiesWithLang(ctx context.Context, prefix string, lang string, limit int) ([]model.CityResult, error) {
	q := `
		SELECT
			c.id,
			COALESCE(ct.name, ct_en.name, c.name_default) AS name,
			COALESCE(cnt_t.name, cnt_en.name, cnt.name_default) AS country,
			c.population
		FROM cities c
		JOIN countries cnt ON c.country_code = cnt.code
		LEFT JOIN city_translations ct ON c.id = ct.city_id AND ct.lang = $1
		LEFT JOIN city_translations ct_en ON c.id = ct_en.city_id AND ct_en.lang = 'en'
		LEFT JOIN country_translations cnt_t ON cnt.code = cnt_t.country_code AND cnt_t.lang = $1
		LEFT JOIN country_translations cnt_en ON cnt.code = cnt_en.country_code AND cnt_en.lang = 'en'
		WHERE
			LOWER(c.name_default) LIKE $2
			OR EXISTS (
				SELECT 1 FROM city_translations search_ct
				WHERE search_ct.city_id = c.id
				AND LOWER(search_ct.name) LIKE $2
			)
		ORDER BY c.population DESC
		LIMIT $3
	`
	var results []model.CityResult
	if err := r.db.SelectContext(ctx, &results, q, lang, prefixPattern(prefix), limit); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *pgCityRepository) BulkInsertCities(ctx context.Context, cities []model.City) error {
	return insertChunked(ctx, r.db, `
		INSERT INTO cities (id, country_code, name_default, population, lat, lon, timezone)
		VALUES (:id, :country_code, :name_default, :population, :lat, :lon, :timezone)
		ON CONFLICT (id) DO NOTHING`,
		cities, 1000)
}

type pgCountryRepository struct {
	db *sqlx.DB
}

func (r *pgCountryRepository) BulkInsertCountries(ctx context.Context, countries []model.Country) error {
	return insertChunked(ctx, r.db, `
		INSERT INTO countries (code, name_default)
		VALUES (:code, :name_default)
		ON CONFLICT (code) DO UPDATE SET name_default = EXCLUDED.name_default`,
		countries, 1000)
}

type pgTranslationRepository struct {
	db *sqlx.DB
}

func (r *pgTranslationRepository) BulkInsertCityTranslations(ctx context.Context, translations []model.CityTranslation) error {
	return insertChunked(ctx, r.db, `
		INSERT INTO city_translations (city_id, lang, name)
		VALUES (:city_id, :lang, :name)
		ON CONFLICT (city_id, lang) DO UPDATE SET name = EXCLUDED.name`,
		translations, 1000)
}

func (r *pgTranslationRepository) BulkInsertCountryTranslations(ctx context.Context, translations []model.CountryTranslation) error {
	return insertChunked(ctx, r.db, `
		INSERT INTO country_translations (country_code, lang, name)
		VALUES (:country_code, :lang, :name)
		ON CONFLICT (country_code, lang) DO UPDATE SET name = EXCLUDED.name`,
		translations, 1000)
}

func (r *pgTranslationRepository) GetAvailableLanguages(ctx context.Context) ([]string, error) {
	q := `SELECT DISTINCT lang FROM (
			SELECT lang FROM city_translations
			UNION
			SELECT lang FROM country_translations
		) AS all_langs ORDER BY lang`
	var langs []string
	if err := r.db.SelectContext(ctx, &langs, q); err != nil {
		return nil, err
	}
	return langs, nil
}
