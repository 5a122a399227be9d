package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

// WatchLocation is a place the scheduler prefetches forecasts for. Either
// City or Address is set.
type WatchLocation struct {
	City    string
	Country string
	Address string
}

func (l WatchLocation) Key() string {
	if l.Address != "" {
		return l.Address
	}
	if l.Country == "" {
		return l.City
	}
	return l.City + "," + l.Country
}

type AppConfig struct {
	OpenWeatherAPIKey  string        `validate:"required"`
	OpenWeatherBaseURL string        `validate:"required,url"`
	HTTPTimeout        time.Duration `validate:"gt=0"`
	DefaultUnits       string        `validate:"oneof=standard metric imperial"`
	DefaultLanguage    string
	WorkerPoolSize     int `validate:"gte=0"`

	// FetchInterval controls how often forecasts are prefetched for each location.
	FetchInterval time.Duration `validate:"gte=0"`

	// Locations to prefetch.
	Locations      []WatchLocation
	GeocoderAPIKey string

	// History retention.
	StoreMaxHistory int           // max number of records per endpoint (0 = unlimited)
	StoreMaxAge     time.Duration // max age of records (0 = unlimited)

	RedisURL     string
	KafkaBrokers []string
	KafkaTopic   string

	Port string `validate:"required,numeric"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5")
	cfg.DefaultUnits = strings.ToLower(getenvDefault("DEFAULT_UNITS", "metric"))
	cfg.DefaultLanguage = strings.ToLower(os.Getenv("DEFAULT_LANGUAGE"))
	cfg.WorkerPoolSize = getenvInt("WORKER_POOL_SIZE", 8)

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	// Scheduler interval: default 15 minutes.
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.KafkaBrokers = splitList(os.Getenv("KAFKA_BROKERS"))
	cfg.KafkaTopic = getenvDefault("KAFKA_TOPIC", "weather.forecasts")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	cfg.Port = getenvDefault("PORT", "8080")

	locs, err := loadLocations()
	if err != nil {
		return nil, err
	}
	cfg.Locations = locs

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	for _, l := range cfg.Locations {
		if l.Address != "" && cfg.GeocoderAPIKey == "" {
			return nil, fmt.Errorf("WEATHER_LOCATION_ADDRESS requires GEOCODER_API_KEY")
		}
	}

	return cfg, nil
}

// loadLocations pairs WEATHER_LOCATION_CITY with WEATHER_LOCATION_COUNTRY
// entry by entry and adds one location per WEATHER_LOCATION_ADDRESS entry,
// separated by ';'.
func loadLocations() ([]WatchLocation, error) {
	cities := splitList(os.Getenv("WEATHER_LOCATION_CITY"))
	countries := splitList(os.Getenv("WEATHER_LOCATION_COUNTRY"))
	if len(countries) > 0 && len(cities) != len(countries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}

	var locs []WatchLocation
	for i := range cities {
		loc := WatchLocation{City: cities[i]}
		if len(countries) > 0 {
			loc.Country = countries[i]
		}
		locs = append(locs, loc)
	}

	for _, addr := range strings.Split(os.Getenv("WEATHER_LOCATION_ADDRESS"), ";") {
		if addr = strings.TrimSpace(addr); addr != "" {
			locs = append(locs, WatchLocation{Address: addr})
		}
	}

	return locs, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
