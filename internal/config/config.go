// Package config loads service configuration from an optional YAML
// file and the environment. Environment variables override the file,
// and a .env file is honored for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the runtime configuration shared by the API server and
// the worker.
type Config struct {
	ServiceName string `yaml:"service_name"`
	Environment string `yaml:"environment"`
	Port        string `yaml:"port"`

	// CatalogPath points at the YAML event catalog.
	CatalogPath string `yaml:"catalog_path"`

	// GeoJSONDir serves event areas from local files. GeoJSONBaseURL
	// switches to the HTTP provider; when both are set the directory
	// wins.
	GeoJSONDir     string `yaml:"geojson_dir"`
	GeoJSONBaseURL string `yaml:"geojson_base_url"`

	// AreaCacheSize is the LRU capacity for parsed areas.
	AreaCacheSize int `yaml:"area_cache_size"`

	// FetchTimeout bounds one GeoJSON download attempt.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	OTLPEndpoint string `yaml:"otlp_endpoint"`
	OTELEnabled  bool   `yaml:"otel_enabled"`

	// PubSubProject and PubSubTopic configure the status transition
	// publisher. Both empty disables publishing.
	PubSubProject string `yaml:"pubsub_project"`
	PubSubTopic   string `yaml:"pubsub_topic"`
}

// Load reads the configuration. A .env file is applied first when
// present, then the YAML file named by CONFIG_FILE, then environment
// variables on top.
func Load() (Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	cfg := Config{
		ServiceName:   "worldwidewaves",
		Environment:   "development",
		Port:          "8080",
		CatalogPath:   "events.yaml",
		AreaCacheSize: 64,
		FetchTimeout:  10 * time.Second,
		OTLPEndpoint:  "localhost:4317",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.AreaCacheSize <= 0 {
		return Config{}, fmt.Errorf("area_cache_size must be positive, got %d", cfg.AreaCacheSize)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.ServiceName, "SERVICE_NAME")
	setString(&cfg.Environment, "APP_ENV")
	setString(&cfg.Port, "APP_PORT")
	setString(&cfg.CatalogPath, "EVENT_CATALOG")
	setString(&cfg.GeoJSONDir, "GEOJSON_DIR")
	setString(&cfg.GeoJSONBaseURL, "GEOJSON_BASE_URL")
	setString(&cfg.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&cfg.PubSubProject, "PUBSUB_PROJECT")
	setString(&cfg.PubSubTopic, "PUBSUB_TOPIC")

	if v := os.Getenv("OTEL_ENABLED"); v != "" {
		cfg.OTELEnabled = v == "true"
	}
	if v := os.Getenv("AREA_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AreaCacheSize = n
		}
	}
	if v := os.Getenv("FETCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.FetchTimeout = d
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
