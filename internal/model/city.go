package model

// City represents a gazetteer city row
type City struct {
	ID          int     `db:"id"`
	CountryCode string  `db:"country_code"`
	NameDefault string  `db:"name_default"`
	Population  int     `db:"population"`
	Lat         float64 `db:"lat"`
	Lon         float64 `db:"lon"`
	Timezone    *string `db:"timezone"`
}

// CityResult is a localized city name as returned by gazetteer searches
type CityResult struct {
	ID         int    `db:"id"`
	Name       string `db:"name"`
	Country    string `db:"country"`
	Population int    `db:"population"`
}

// CityTranslation represents a translation of a city name
type CityTranslation struct {
	CityID int    `db:"city_id"`
	Lang   string `db:"lang"`
	Name   string `db:"name"`
}

// Country represents a country in the gazetteer
type Country struct {
	Code        string `db:"code"`
	NameDefault string `db:"name_default"`
	// GeonameID links alternate names to the country during import only
	GeonameID int `db:"-"`
}

// CountryTranslation represents a translation of a country name
type CountryTranslation struct {
	CountryCode string `db:"country_code"`
	Lang        string `db:"lang"`
	Name        string `db:"name"`
}
