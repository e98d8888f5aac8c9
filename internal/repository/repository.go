package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexivanou/wetter-proxy/internal/config"
	"github.com/alexivanou/wetter-proxy/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// CityRepository defines gazetteer operations on cities
type CityRepository interface {
	SearchCitiesWithLang(ctx context.Context, prefix string, lang string, limit int) ([]model.CityResult, error)
	BulkInsertCities(ctx context.Context, cities []model.City) error
}

// CountryRepository defines gazetteer operations on countries
type CountryRepository interface {
	BulkInsertCountries(ctx context.Context, countries []model.Country) error
}

// TranslationRepository defines operations for translations
type TranslationRepository interface {
	BulkInsertCityTranslations(ctx context.Context, translations []model.CityTranslation) error
	BulkInsertCountryTranslations(ctx context.Context, translations []model.CountryTranslation) error
	GetAvailableLanguages(ctx context.Context) ([]string, error)
}

// Container holds all repositories
type Container struct {
	City        CityRepository
	Country     CountryRepository
	Translation TranslationRepository
}

// NewRepositories creates repository implementations based on DB type
func NewRepositories(db *sqlx.DB, dbType config.DBType) *Container {
	if dbType == config.DBTypePostgreSQL {
		return &Container{
			City:        &pgCityRepository{db: db},
			Country:     &pgCountryRepository{db: db},
			Translation: &pgTranslationRepository{db: db},
		}
	}

	return &Container{
		City:        &sqliteCityRepository{db: db},
		Country:     &sqliteCountryRepository{db: db},
		Translation: &sqliteTranslationRepository{db: db},
	}
}

// IsDatabaseEmpty reports whether the gazetteer holds no cities.
// A missing table counts as empty; any other error is returned.
func IsDatabaseEmpty(ctx context.Context, db *sqlx.DB) (bool, error) {
	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM cities"); err != nil {
		if isUndefinedTable(err) {
			return true, nil
		}
		return false, fmt.Errorf("failed to count cities: %w", err)
	}
	return count == 0, nil
}

// SQLSTATE undefined_table
const pgUndefinedTable = "42P01"

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUndefinedTable
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return strings.HasPrefix(liteErr.Error(), "no such table")
	}
	return false
}

// insertChunked runs a named insert per chunk to stay under driver parameter limits
func insertChunked[T any](ctx context.Context, db *sqlx.DB, q string, rows []T, chunkSize int) error {
	for start := 0; start < len(rows); start += chunkSize {
		end := min(start+chunkSize, len(rows))
		if _, err := db.NamedExecContext(ctx, q, rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// prefixPattern turns user input into a case-insensitive LIKE prefix pattern
func prefixPattern(prefix string) string {
	return likeEscaper.Replace(strings.ToLower(prefix)) + "%"
}
