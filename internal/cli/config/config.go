package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"campuscomplaint/internal/api"
	"campuscomplaint/internal/common/kv"
	"campuscomplaint/pkg/utils/logger"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTokenStorePath = "configs/cli_session.json"
	DefaultPageSize       = 10
	DefaultHistoryFile    = ".campuscomplaint_history"
	DefaultUserAgent      = "campuscomplaint-cli/1.0"
)

// SessionConfig controls how the token store judges validity.
type SessionConfig struct {
	ValidityWindow time.Duration `yaml:"validityWindow" env:"CAMPUS_SESSION_WINDOW"`
	// PresenceOnly keeps the deprecated mode where any stored pair counts as signed in.
	PresenceOnly bool `yaml:"presenceOnly" env:"CAMPUS_SESSION_PRESENCE_ONLY"`
}

// LocationConfig is the position reported by the CLI's static location service.
type LocationConfig struct {
	Latitude   float64 `yaml:"latitude" env:"CAMPUS_LATITUDE"`
	Longitude  float64 `yaml:"longitude" env:"CAMPUS_LONGITUDE"`
	Disabled   bool    `yaml:"disabled" env:"CAMPUS_LOCATION_DISABLED"`
	Permission string  `yaml:"permission" env:"CAMPUS_LOCATION_PERMISSION"`
}

// GeocoderConfig enables reverse geocoding of the reported position.
type GeocoderConfig struct {
	Enabled bool          `yaml:"enabled" env:"CAMPUS_GEOCODER_ENABLED"`
	BaseURL string        `yaml:"baseURL" env:"CAMPUS_GEOCODER_URL"`
	Timeout time.Duration `yaml:"timeout"`
}

// Config holds CLI configuration.
type Config struct {
	API         api.Config     `yaml:"api"`
	TokenStore  kv.Config      `yaml:"tokenStore"`
	Session     SessionConfig  `yaml:"session"`
	Logger      logger.Config  `yaml:"logger"`
	Location    LocationConfig `yaml:"location"`
	Geocoder    GeocoderConfig `yaml:"geocoder"`
	PageSize    int            `yaml:"pageSize" env:"CAMPUS_PAGE_SIZE"`
	PrettyJSON  *bool          `yaml:"prettyJSON"`
	HistoryFile string         `yaml:"historyFile" env:"CAMPUS_HISTORY_FILE"`
}

// Load reads path, overlays CAMPUS_* variables (including those from a local .env) and fills defaults.
// A missing file is not an error; the CLI then runs on defaults and environment alone.
func Load(path string) (Config, error) {
	cfg := Config{}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env failed: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config file failed: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return cfg, fmt.Errorf("read config file failed: %w", err)
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("overlay env failed: %w", err)
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = api.DefaultBaseURL
	}
	if cfg.API.UserAgent == "" {
		cfg.API.UserAgent = DefaultUserAgent
	}
	if cfg.TokenStore.Backend == "" {
		cfg.TokenStore.Backend = kv.BackendFile
	}
	if cfg.TokenStore.Backend == kv.BackendFile && cfg.TokenStore.Path == "" {
		cfg.TokenStore.Path = DefaultTokenStorePath
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.HistoryFile == "" {
		cfg.HistoryFile = DefaultHistoryFile
	}
	if cfg.PrettyJSON == nil {
		value := true
		cfg.PrettyJSON = &value
	}
}
