package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// WeatherAPIKeyEnv names the environment variable holding the weather provider secret.
const WeatherAPIKeyEnv = "WEATHER_API_KEY"

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Weather   WeatherConfig
	Geocoding GeocodingConfig
	DB        DBConfig
	Seeder    SeederConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
}

// WeatherConfig describes the upstream weather provider.
// The API key lives outside it, see WeatherAPIKey.
type WeatherConfig struct {
	BaseURL string
	Timeout time.Duration
}

// GeocodingProvider selects the backend for city suggestions
type GeocodingProvider string

const (
	GeocodingGeoapify GeocodingProvider = "geoapify"
	GeocodingLocal    GeocodingProvider = "local"
)

// GeocodingConfig describes the suggestion backend
type GeocodingConfig struct {
	Provider GeocodingProvider
	BaseURL  string
	APIKey   string
	Lang     string
	Limit    int
	Type     string
	Timeout  time.Duration
}

// DBType represents database type
type DBType string

const (
	DBTypePostgreSQL DBType = "postgres"
	DBTypeMemory     DBType = "memory"
)

// DBConfig holds gazetteer database configuration
type DBConfig struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// SeederConfig holds settings for the GeoNames import
type SeederConfig struct {
	DataDir          string
	BatchSize        int
	MinPopulation    int
	AllowedLanguages []string
}

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	if c.Type == DBTypeMemory {
		if c.Name != "" && c.Name != "wetter" {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared", c.Name)
		}
		return "file::memory:?cache=shared"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// IsMemory returns true if using in-memory database
func (c DBConfig) IsMemory() bool {
	return c.Type == DBTypeMemory
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", "memory"))
	if dbType != DBTypePostgreSQL && dbType != DBTypeMemory {
		dbType = DBTypeMemory
	}

	provider := GeocodingProvider(strings.ToLower(getEnv("GEOCODING_PROVIDER", string(GeocodingGeoapify))))
	if provider != GeocodingGeoapify && provider != GeocodingLocal {
		return nil, fmt.Errorf("unknown GEOCODING_PROVIDER %q", provider)
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("APP_PORT", "8080"),
		},
		Weather: WeatherConfig{
			BaseURL: strings.TrimRight(getEnv("WEATHER_API_URL", "https://api.weatherapi.com"), "/"),
			Timeout: getEnvAsDuration("WEATHER_TIMEOUT", 10*time.Second),
		},
		Geocoding: GeocodingConfig{
			Provider: provider,
			BaseURL:  strings.TrimRight(getEnv("GEOCODING_API_URL", "https://api.geoapify.com"), "/"),
			APIKey:   os.Getenv("GEOCODING_API_KEY"),
			Lang:     getEnv("GEOCODING_LANG", "de"),
			Limit:    getEnvAsPositiveInt("GEOCODING_LIMIT", 5),
			Type:     getEnv("GEOCODING_TYPE", "city"),
			Timeout:  getEnvAsDuration("GEOCODING_TIMEOUT", 10*time.Second),
		},
		DB: DBConfig{
			Type:     dbType,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "wetter"),
			Password: getEnv("DB_PASSWORD", "wetter_password"),
			Name:     getEnv("DB_NAME", "wetter"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Seeder: SeederConfig{
			DataDir:          getEnv("SEEDER_DATA_DIR", "data"),
			BatchSize:        getEnvAsPositiveInt("SEEDER_BATCH_SIZE", 10000),
			MinPopulation:    getEnvAsInt("SEEDER_MIN_POPULATION", 10000),
			AllowedLanguages: getEnvAsSlice("SEEDER_ALLOWED_LANGUAGES"),
		},
	}

	return config, nil
}

// WeatherAPIKey reads the weather provider secret. It is evaluated on every
// upstream call so a rotated key is picked up without a restart.
func WeatherAPIKey() string {
	return os.Getenv(WeatherAPIKeyEnv)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsPositiveInt(key string, defaultValue int) int {
	if v := getEnvAsInt(key, defaultValue); v > 0 {
		return v
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
