package repository

import (
	"context"

	"github.com/alexivanou/wetter-proxy/internal/model"
	"github.com/jmoiron/sqlx"
)

type sqliteCityRepository struct {
	db *sqlx.DB
}

func (r *sqliteCityRepository) SearchCitiesWithLang(ctx context.Context, prefix string, lang string, limit int) ([]model.CityResult, error) {
	q := `
		SELECT
			c.id,
			COALESCE(ct.name, ct_en.name, c.name_default) AS name,
			COALESCE(cnt_t.name, cnt_en.name, cnt.name_default) AS country,
			c.population
		FROM cities c
		JOIN countries cnt ON c.country_code = cnt.code
		LEFT JOIN city_translations ct ON c.id = ct.city_id AND ct.lang = ?
		LEFT JOIN city_translations ct_en ON c.id = ct_en.city_id AND ct_en.lang = 'en'
		LEFT JOIN country_translations cnt_t ON cnt.code = cnt_t.country_code AND cnt_t.lang = ?
		LEFT JOIN country_translations cnt_en ON cnt.code = cnt_en.country_code AND cnt_en.lang = 'en'
		WHERE
			LOWER(c.name_default) LIKE ? ESCAPE '\'
			OR EXISTS (
				SELECT 1 FROM city_translations search_ct
				WHERE search_ct.city_id = c.id
				AND LOWER(search_ct.name) LIKE ? ESCAPE '\'
			)
		ORDER BY c.population DESC
		LIMIT ?
	`
	pattern := prefixPattern(prefix)
	var results []model.CityResult
	if err := r.db.SelectContext(ctx, &results, q, lang, lang, pattern, pattern, limit); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sqliteCityRepository) BulkInsertCities(ctx context.Context, cities []model.City) error {
	// 7 params per row keeps 100 rows under SQLITE_MAX_VARIABLE_NUMBER
	return insertChunked(ctx, r.db, `
		INSERT INTO cities (id, country_code, name_default, population, lat, lon, timezone)
		VALUES (:id, :country_code, :name_default, :population, :lat, :lon, :timezone)`,
		cities, 100)
}

type sqliteCountryRepository struct {
	db *sqlx.DB
}

func (r *sqliteCountryRepository) BulkInsertCountries(ctx context.Context, countries []model.Country) error {
	return insertChunked(ctx, r.db, `
		INSERT OR REPLACE INTO countries (code, name_default)
		VALUES (:code, :name_default)`,
		countries, 200)
}

type sqliteTranslationRepository struct {
	db *sqlx.DB
}

func (r *sqliteTranslationRepository) BulkInsertCityTranslations(ctx context.Context, translations []model.CityTranslation) error {
	return insertChunked(ctx, r.db, `
		INSERT OR REPLACE INTO city_translations (city_id, lang, name)
		VALUES (:city_id, :lang, :name)`,
		translations, 250)
}

func (r *sqliteTranslationRepository) BulkInsertCountryTranslations(ctx context.Context, translations []model.CountryTranslation) error {
	return insertChunked(ctx, r.db, `
		INSERT OR REPLACE INTO country_translations (country_code, lang, name)
		VALUES (:country_code, :lang, :name)`,
		translations, 250)
}

func (r *sqliteTranslationRepository) GetAvailableLanguages(ctx context.Context) ([]string, error) {
	q := `SELECT DISTINCT lang FROM (
			SELECT lang FROM city_translations
			UNION
			SELECT lang FROM country_translations
		) ORDER BY lang`
	var langs []string
	if err := r.db.SelectContext(ctx, &langs, q); err != nil {
		return nil, err
	}
	return langs, nil
}
