package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig is the process-wide static configuration, read once at startup.
// User-changeable settings (refresh interval, dark mode) live in Preferences
// instead so components never read them ambiently.
type AppConfig struct {
	OpenWeatherAPIKey string

	// Endpoint overrides; empty means the client defaults.
	WeatherBaseURL   string
	ForecastBaseURL  string
	DirectoryBaseURL string

	HTTPTimeout time.Duration

	// StatePath is the file backing the key-value store.
	StatePath string

	// DefaultCities are resolved on first start when no persisted list exists.
	DefaultCities []string

	// SuggestionTTL bounds how long the directory city list is served from cache.
	SuggestionTTL time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	if cfg.OpenWeatherAPIKey == "" {
		return nil, fmt.Errorf("OPENWEATHER_API_KEY is required")
	}

	cfg.WeatherBaseURL = os.Getenv("WEATHER_BASE_URL")
	cfg.ForecastBaseURL = os.Getenv("FORECAST_BASE_URL")
	cfg.DirectoryBaseURL = os.Getenv("CITY_DIRECTORY_URL")

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.StatePath = getenvDefault("STATE_PATH", "weatherwise.json")

	citiesStr := getenvDefault("DEFAULT_CITIES", "Ottawa,Montreal,Toronto,Calgary,Edmonton")
	for _, name := range strings.Split(citiesStr, ",") {
		if name = strings.TrimSpace(name); name != "" {
			cfg.DefaultCities = append(cfg.DefaultCities, name)
		}
	}

	ttlStr := getenvDefault("SUGGESTION_TTL", "1h")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SUGGESTION_TTL: %w", err)
	}
	cfg.SuggestionTTL = ttl

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
