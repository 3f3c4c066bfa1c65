package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// LayerConfig describes one queryable layer of an upstream feature service.
type LayerConfig struct {
	// Name identifies the source in logs and metrics.
	Name string
	// URL is the layer query endpoint (".../FeatureServer/<n>/query").
	URL string
	// NameField is the attribute the text filter matches against.
	NameField string
	// DistrictField is the attribute the district filter matches against
	// (school layers only).
	DistrictField string
}

// SearchConfig configures the search core. Both catalogs (the private one and
// the public one) expose a district layer and a school layer; every search
// fans out to the pair for its field.
type SearchConfig struct {
	DistrictLayers [2]LayerConfig
	SchoolLayers   [2]LayerConfig

	DebounceInterval time.Duration
	MinQueryLength   int

	DistrictRecordCap int
	SchoolRecordCap   int

	HTTPTimeout time.Duration
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port string

	// APIToken, when set, gates all /v1 endpoints behind a bearer token.
	APIToken string

	// MapAPIKey is handed to the map-display collaborator. Its absence
	// degrades map rendering only, never search.
	MapAPIKey string

	SessionTTL time.Duration
}

// LoadSearchConfigFromEnv reads the four layer endpoints plus tuning knobs.
// The endpoints are required; everything else has defaults matching the
// shipped widget (700ms debounce, 2-char minimum, 500/100 record caps).
func LoadSearchConfigFromEnv() (SearchConfig, error) {
	cfg, err := loadSearchTuning()
	if err != nil {
		return SearchConfig{}, err
	}

	for _, v := range []string{
		"PRIVATE_DISTRICT_LAYER_URL", "PUBLIC_DISTRICT_LAYER_URL",
		"PRIVATE_SCHOOL_LAYER_URL", "PUBLIC_SCHOOL_LAYER_URL",
	} {
		if os.Getenv(v) == "" {
			return SearchConfig{}, fmt.Errorf("missing required env var: %s", v)
		}
	}

	cfg.DistrictLayers = [2]LayerConfig{
		{
			Name:      "private",
			URL:       os.Getenv("PRIVATE_DISTRICT_LAYER_URL"),
			NameField: getenv("PRIVATE_DISTRICT_NAME_FIELD", "NAME"),
		},
		{
			Name:      "public",
			URL:       os.Getenv("PUBLIC_DISTRICT_LAYER_URL"),
			NameField: getenv("PUBLIC_DISTRICT_NAME_FIELD", "NAME"),
		},
	}
	cfg.SchoolLayers = [2]LayerConfig{
		{
			Name:          "private",
			URL:           os.Getenv("PRIVATE_SCHOOL_LAYER_URL"),
			NameField:     getenv("PRIVATE_SCHOOL_NAME_FIELD", "NAME"),
			DistrictField: getenv("PRIVATE_SCHOOL_DISTRICT_FIELD", "LEAID"),
		},
		{
			Name:          "public",
			URL:           os.Getenv("PUBLIC_SCHOOL_LAYER_URL"),
			NameField:     getenv("PUBLIC_SCHOOL_NAME_FIELD", "NAME"),
			DistrictField: getenv("PUBLIC_SCHOOL_DISTRICT_FIELD", "LEAID"),
		},
	}

	return cfg, nil
}

// LoadFixtureSearchConfigFromEnv reads only the tuning knobs. The fixture
// backend needs no upstream endpoints.
func LoadFixtureSearchConfigFromEnv() (SearchConfig, error) {
	return loadSearchTuning()
}

func loadSearchTuning() (SearchConfig, error) {
	cfg := SearchConfig{
		DebounceInterval:  700 * time.Millisecond,
		MinQueryLength:    2,
		DistrictRecordCap: 500,
		SchoolRecordCap:   100,
		HTTPTimeout:       15 * time.Second,
	}

	if v := os.Getenv("SEARCH_DEBOUNCE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return SearchConfig{}, fmt.Errorf("SEARCH_DEBOUNCE_INTERVAL must be a duration (e.g. 700ms): %w", err)
		}
		cfg.DebounceInterval = d
	}
	if v := os.Getenv("SEARCH_MIN_QUERY_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return SearchConfig{}, fmt.Errorf("SEARCH_MIN_QUERY_LENGTH must be a positive integer")
		}
		cfg.MinQueryLength = n
	}
	if v := os.Getenv("SOURCE_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return SearchConfig{}, fmt.Errorf("SOURCE_HTTP_TIMEOUT must be a duration (e.g. 15s): %w", err)
		}
		cfg.HTTPTimeout = d
	}

	return cfg, nil
}

// LoadServerConfigFromEnv reads HTTP-surface settings. Nothing is required:
// the service comes up open, on :8080, without a map key.
func LoadServerConfigFromEnv() (ServerConfig, error) {
	cfg := ServerConfig{
		Port:       getenv("PORT", "8080"),
		APIToken:   os.Getenv("API_TOKEN"),
		MapAPIKey:  os.Getenv("MAP_API_KEY"),
		SessionTTL: 15 * time.Minute,
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("SESSION_TTL must be a duration (e.g. 15m): %w", err)
		}
		cfg.SessionTTL = d
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
