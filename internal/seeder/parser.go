package seeder

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alexivanou/wetter-proxy/internal/config"
	"github.com/alexivanou/wetter-proxy/internal/model"
)

// alternate name languages that are really identifiers or links
var technicalLangs = map[string]bool{
	"link": true, "post": true, "iata": true, "icao": true, "faac": true,
	"fr_1793": true, "abbr": true, "wkdt": true, "unlc": true,
}

// Parser reads GeoNames dump files
type Parser struct {
	dataDir          string
	batchSize        int
	minPopulation    int
	allowedLanguages map[string]bool
}

// NewParser creates a new parser instance with config
func NewParser(cfg config.SeederConfig) *Parser {
	allowed := make(map[string]bool, len(cfg.AllowedLanguages))
	for _, lang := range cfg.AllowedLanguages {
		allowed[lang] = true
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 10000
	}
	return &Parser{
		dataDir:          cfg.DataDir,
		batchSize:        batchSize,
		minPopulation:    cfg.MinPopulation,
		allowedLanguages: allowed,
	}
}

// openDump opens <name>.zip (first matching .txt entry) or falls back to <name>.txt
func (p *Parser) openDump(name string) (io.ReadCloser, error) {
	zipPath := filepath.Join(p.dataDir, name+".zip")
	if _, err := os.Stat(zipPath); err == nil {
		zr, err := zip.OpenReader(zipPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", zipPath, err)
		}
		var target *zip.File
		for _, f := range zr.File {
			if filepath.Base(f.Name) == name+".txt" {
				target = f
				break
			}
			if target == nil && strings.HasSuffix(f.Name, ".txt") && !strings.Contains(f.Name, "readme") {
				target = f
			}
		}
		if target == nil {
			zr.Close()
			return nil, fmt.Errorf("no txt file found in %s", zipPath)
		}
		rc, err := target.Open()
		if err != nil {
			zr.Close()
			return nil, fmt.Errorf("failed to open %s in zip: %w", target.Name, err)
		}
		return zipEntry{ReadCloser: rc, archive: zr}, nil
	}

	f, err := os.Open(filepath.Join(p.dataDir, name+".txt"))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s.txt: %w", name, err)
	}
	return f, nil
}

type zipEntry struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (z zipEntry) Close() error {
	z.ReadCloser.Close()
	return z.archive.Close()
}

// ParseCountries parses countryInfo.txt
func (p *Parser) ParseCountries() ([]model.Country, error) {
	r, err := p.openDump("countryInfo")
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return parseCountries(r)
}

func parseCountries(r io.Reader) ([]model.Country, error) {
	var countries []model.Country
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		// ISO, ISO3, ISO-Numeric, fips, Country, ..., geonameid at column 16
		fields := strings.Split(line, "\t")
		if len(fields) < 17 || fields[0] == "" || fields[4] == "" {
			continue
		}
		geonameID, _ := strconv.Atoi(fields[16])
		countries = append(countries, model.Country{
			Code:        fields[0],
			NameDefault: fields[4],
			GeonameID:   geonameID,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan countryInfo: %w", err)
	}
	return countries, nil
}

// ParseCities parses cities1000 and keeps cities at or above the population floor
func (p *Parser) ParseCities() ([]model.City, error) {
	r, err := p.openDump("cities1000")
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return p.parseCities(r)
}

func (p *Parser) parseCities(r io.Reader) ([]model.City, error) {
	var cities []model.City
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 19 {
			continue
		}
		city, ok := p.cityFromFields(fields)
		if ok {
			cities = append(cities, city)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan cities: %w", err)
	}
	return cities, nil
}

func (p *Parser) cityFromFields(fields []string) (model.City, bool) {
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return model.City{}, false
	}
	population, err := strconv.Atoi(fields[14])
	if err != nil || population < p.minPopulation {
		return model.City{}, false
	}
	lat, errLat := strconv.ParseFloat(fields[4], 64)
	lon, errLon := strconv.ParseFloat(fields[5], 64)
	if errLat != nil || errLon != nil {
		return model.City{}, false
	}

	city := model.City{
		ID:          id,
		NameDefault: fields[1],
		Lat:         lat,
		Lon:         lon,
		CountryCode: fields[8],
		Population:  population,
	}
	if tz := fields[17]; tz != "" {
		city.Timezone = &tz
	}
	return city, true
}

// Index tells the alternate names pass which geoname ids matter
type Index struct {
	cities    map[int]bool
	countries map[int]string // country geonameid -> ISO code
}

// NewIndex builds the lookup tables for imported cities and countries
func NewIndex(cities []model.City, countries []model.Country) Index {
	idx := Index{
		cities:    make(map[int]bool, len(cities)),
		countries: make(map[int]string, len(countries)),
	}
	for _, c := range cities {
		idx.cities[c.ID] = true
	}
	for _, c := range countries {
		if c.GeonameID != 0 {
			idx.countries[c.GeonameID] = c.Code
		}
	}
	return idx
}

// ProcessAlternateNames streams alternateNames and emits translation batches.
// Either callback may be nil.
func (p *Parser) ProcessAlternateNames(
	idx Index,
	onCities func([]model.CityTranslation) error,
	onCountries func([]model.CountryTranslation) error,
) error {
	r, err := p.openDump("alternateNames")
	if err != nil {
		return err
	}
	defer r.Close()
	return p.processAlternateNames(r, idx, onCities, onCountries)
}

// alternateName is one usable row of alternateNames.txt
type alternateName struct {
	geonameID int
	lang      string
	name      string
	preferred bool
}

func (p *Parser) parseAlternateName(line string) (alternateName, bool) {
	// alternateNameId, geonameid, isolanguage, name, isPreferredName, isShortName, isColloquial, isHistoric
	fields := strings.Split(line, "\t")
	if len(fields) < 4 {
		return alternateName{}, false
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return alternateName{}, false
	}
	lang, name := fields[2], fields[3]
	if lang == "" || name == "" || technicalLangs[lang] {
		return alternateName{}, false
	}
	if flag(fields, 6) || flag(fields, 7) {
		return alternateName{}, false
	}
	if len(lang) > 2 {
		lang = lang[:2]
	}
	if len(p.allowedLanguages) > 0 && !p.allowedLanguages[lang] {
		return alternateName{}, false
	}
	return alternateName{geonameID: id, lang: lang, name: name, preferred: flag(fields, 4)}, true
}

func flag(fields []string, i int) bool {
	return len(fields) > i && fields[i] == "1"
}

func (p *Parser) processAlternateNames(
	r io.Reader,
	idx Index,
	onCities func([]model.CityTranslation) error,
	onCountries func([]model.CountryTranslation) error,
) error {
	cityBatch := newBatcher(p.batchSize, func(t *model.CityTranslation, name string) { t.Name = name }, onCities)
	countryBatch := newBatcher(p.batchSize, func(t *model.CountryTranslation, name string) { t.Name = name }, onCountries)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		alt, ok := p.parseAlternateName(scanner.Text())
		if !ok {
			continue
		}

		if idx.cities[alt.geonameID] {
			key := fmt.Sprintf("%d:%s", alt.geonameID, alt.lang)
			row := model.CityTranslation{CityID: alt.geonameID, Lang: alt.lang, Name: alt.name}
			if err := cityBatch.add(key, row, alt.name, alt.preferred); err != nil {
				return fmt.Errorf("city callback error: %w", err)
			}
		}

		if code, ok := idx.countries[alt.geonameID]; ok {
			key := code + ":" + alt.lang
			row := model.CountryTranslation{CountryCode: code, Lang: alt.lang, Name: alt.name}
			if err := countryBatch.add(key, row, alt.name, alt.preferred); err != nil {
				return fmt.Errorf("country callback error: %w", err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to scan alternateNames: %w", err)
	}

	if err := cityBatch.flush(); err != nil {
		return fmt.Errorf("city callback error: %w", err)
	}
	if err := countryBatch.flush(); err != nil {
		return fmt.Errorf("country callback error: %w", err)
	}
	return nil
}

// batcher emits one translation per key. A preferred name replaces an earlier
// one; once a key has a preferred name, later rows for it are dropped even
// across flushes, since the stores upsert last-write-wins.
type batcher[T any] struct {
	size   int
	rows   []T
	index  map[string]int
	seen   map[string]bool // key -> has a preferred name
	rename func(*T, string)
	emit   func([]T) error
}

func newBatcher[T any](size int, rename func(*T, string), emit func([]T) error) *batcher[T] {
	return &batcher[T]{
		size:   size,
		rows:   make([]T, 0, size),
		index:  make(map[string]int),
		seen:   make(map[string]bool),
		rename: rename,
		emit:   emit,
	}
}

func (b *batcher[T]) add(key string, row T, name string, preferred bool) error {
	if b.emit == nil {
		return nil
	}
	if hasPreferred, ok := b.seen[key]; ok && (hasPreferred || !preferred) {
		return nil
	}
	b.seen[key] = preferred

	if i, ok := b.index[key]; ok {
		b.rename(&b.rows[i], name)
		return nil
	}
	b.index[key] = len(b.rows)
	b.rows = append(b.rows, row)
	if len(b.rows) >= b.size {
		return b.flush()
	}
	return nil
}

func (b *batcher[T]) flush() error {
	if b.emit == nil || len(b.rows) == 0 {
		return nil
	}
	if err := b.emit(b.rows); err != nil {
		return err
	}
	b.rows = make([]T, 0, b.size)
	b.index = make(map[string]int)
	return nil
}
