package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/alexivanou/wetter-proxy/internal/config"
	"github.com/alexivanou/wetter-proxy/internal/database"
	"github.com/alexivanou/wetter-proxy/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) (*Container, *sqlx.DB) {
	t.Helper()
	cfg := config.DBConfig{
		Type: config.DBTypeMemory,
		Name: fmt.Sprintf("repo_%s", strings.ReplaceAll(t.Name(), "/", "_")),
	}
	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db, cfg.Type))

	repos := NewRepositories(db, config.DBTypeMemory)
	ctx := context.Background()

	err = repos.Country.BulkInsertCountries(ctx, []model.Country{
		{Code: "DE", NameDefault: "Germany"},
		{Code: "US", NameDefault: "United States"},
	})
	require.NoError(t, err)

	cities := []model.City{
		{ID: 1, CountryCode: "DE", NameDefault: "Berlin", Population: 3600000, Lat: 52.52, Lon: 13.405},
		{ID: 2, CountryCode: "DE", NameDefault: "Bernau bei Berlin", Population: 40000, Lat: 52.68, Lon: 13.58},
		{ID: 3, CountryCode: "US", NameDefault: "Berlin", Population: 20000, Lat: 44.47, Lon: -71.18},
		{ID: 4, CountryCode: "DE", NameDefault: "Munich", Population: 1500000, Lat: 48.13, Lon: 11.58},
		{ID: 5, CountryCode: "DE", NameDefault: "Potsdam", Population: 180000, Lat: 52.39, Lon: 13.06},
	}
	require.NoError(t, repos.City.BulkInsertCities(ctx, cities))

	require.NoError(t, repos.Translation.BulkInsertCityTranslations(ctx, []model.CityTranslation{
		{CityID: 4, Lang: "de", Name: "München"},
		{CityID: 4, Lang: "en", Name: "Munich"},
	}))
	require.NoError(t, repos.Translation.BulkInsertCountryTranslations(ctx, []model.CountryTranslation{
		{CountryCode: "DE", Lang: "de", Name: "Deutschland"},
		{CountryCode: "US", Lang: "de", Name: "Vereinigte Staaten"},
	}))

	return repos, db
}

func TestCityRepository_SearchCitiesWithLang(t *testing.T) {
	repos, _ := setupRepo(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		prefix   string
		lang     string
		limit    int
		expected []model.CityResult
	}{
		{
			name:   "prefix ordered by population",
			prefix: "Ber",
			lang:   "de",
			limit:  10,
			expected: []model.CityResult{
				{ID: 1, Name: "Berlin", Country: "Deutschland", Population: 3600000},
				{ID: 2, Name: "Bernau bei Berlin", Country: "Deutschland", Population: 40000},
				{ID: 3, Name: "Berlin", Country: "Vereinigte Staaten", Population: 20000},
			},
		},
		{
			name:   "case insensitive",
			prefix: "pots",
			lang:   "de",
			limit:  10,
			expected: []model.CityResult{
				{ID: 5, Name: "Potsdam", Country: "Deutschland", Population: 180000},
			},
		},
		{
			name:   "matches translated name and localizes",
			prefix: "Mün",
			lang:   "de",
			limit:  10,
			expected: []model.CityResult{
				{ID: 4, Name: "München", Country: "Deutschland", Population: 1500000},
			},
		},
		{
			name:   "falls back to english",
			prefix: "Mun",
			lang:   "fr",
			limit:  10,
			expected: []model.CityResult{
				{ID: 4, Name: "Munich", Country: "Germany", Population: 1500000},
			},
		},
		{
			name:   "substring is not a prefix",
			prefix: "erlin",
			lang:   "de",
			limit:  10,
		},
		{
			name:   "wildcards are literal",
			prefix: "B%",
			lang:   "de",
			limit:  10,
		},
		{
			name:   "limit applies",
			prefix: "Ber",
			lang:   "de",
			limit:  1,
			expected: []model.CityResult{
				{ID: 1, Name: "Berlin", Country: "Deutschland", Population: 3600000},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := repos.City.SearchCitiesWithLang(ctx, tt.prefix, tt.lang, tt.limit)
			require.NoError(t, err)
			if len(tt.expected) == 0 {
				assert.Empty(t, results)
				return
			}
			assert.Equal(t, tt.expected, results)
		})
	}
}

func TestTranslationRepository_GetAvailableLanguages(t *testing.T) {
	repos, _ := setupRepo(t)

	langs, err := repos.Translation.GetAvailableLanguages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"de", "en"}, langs)
}

func TestIsDatabaseEmpty(t *testing.T) {
	_, db := setupRepo(t)
	ctx := context.Background()

	empty, err := IsDatabaseEmpty(ctx, db)
	require.NoError(t, err)
	assert.False(t, empty)

	_, err = db.ExecContext(ctx, "DELETE FROM cities")
	require.NoError(t, err)

	empty, err = IsDatabaseEmpty(ctx, db)
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestIsDatabaseEmpty_Errors(t *testing.T) {
	cfg := config.DBConfig{Type: config.DBTypeMemory, Name: "repo_unmigrated"}
	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("missing table counts as empty", func(t *testing.T) {
		empty, err := IsDatabaseEmpty(ctx, db)
		require.NoError(t, err)
		assert.True(t, empty)
	})

	t.Run("connection failure is returned", func(t *testing.T) {
		require.NoError(t, db.Close())

		empty, err := IsDatabaseEmpty(ctx, db)
		assert.Error(t, err)
		assert.False(t, empty)
	})
}

func TestIsUndefinedTable(t *testing.T) {
	assert.True(t, isUndefinedTable(&pgconn.PgError{Code: "42P01"}))
	assert.True(t, isUndefinedTable(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "42P01"})))
	assert.False(t, isUndefinedTable(&pgconn.PgError{Code: "42501"}))
	assert.False(t, isUndefinedTable(errors.New("connection refused")))
}

func TestPrefixPattern(t *testing.T) {
	assert.Equal(t, "ber%", prefixPattern("Ber"))
	assert.Equal(t, `100\%\_%`, prefixPattern("100%_"))
}
