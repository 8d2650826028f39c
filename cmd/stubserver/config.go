package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"campuscomplaint/internal/backend"
	"campuscomplaint/internal/common/kv"
	"campuscomplaint/internal/common/storage"
	"campuscomplaint/pkg/utils/logger"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPAddr        = "127.0.0.1:8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultGeocoderAgent   = "campuscomplaint-stubserver/1.0"
	defaultPhotoBucket     = "complaint-photos"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr" env:"CAMPUS_STUB_ADDR"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
}

// StorageConfig selects where complaint photos live.
type StorageConfig struct {
	// Backend is "memory" (default) or "minio".
	Backend string              `yaml:"backend" env:"CAMPUS_PHOTO_BACKEND"`
	MinIO   storage.MinIOConfig `yaml:"minio"`
}

// OTPStoreConfig selects where password reset codes live.
type OTPStoreConfig struct {
	// Backend is "memory" (default) or "redis".
	Backend string         `yaml:"backend" env:"CAMPUS_OTP_BACKEND"`
	Redis   kv.RedisConfig `yaml:"redis"`
}

// GeocoderConfig enables server-side reverse geocoding of submitted locations.
type GeocoderConfig struct {
	Enabled   bool          `yaml:"enabled" env:"CAMPUS_GEOCODER_ENABLED"`
	BaseURL   string        `yaml:"baseURL" env:"CAMPUS_GEOCODER_URL"`
	UserAgent string        `yaml:"userAgent"`
	Timeout   time.Duration `yaml:"timeout"`
}

// AppConfig holds the stub server configuration.
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Logger   logger.Config  `yaml:"logger"`
	Backend  backend.Config `yaml:"backend"`
	Storage  StorageConfig  `yaml:"storage"`
	OTPStore OTPStoreConfig `yaml:"otpStore"`
	Geocoder GeocoderConfig `yaml:"geocoder"`
}

func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse config file failed: %w", err)
	}
	return nil
}

func loadAppConfig(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env failed: %w", err)
	}
	var cfg AppConfig
	if err := loadYAML(path, &cfg); err != nil {
		return nil, err
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("overlay env failed: %w", err)
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultHTTPAddr
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = defaultIdleTimeout
	}
	if cfg.Backend.PublicURL == "" {
		cfg.Backend.PublicURL = "http://" + cfg.Server.Addr
	}
	if cfg.Geocoder.UserAgent == "" {
		cfg.Geocoder.UserAgent = defaultGeocoderAgent
	}
	if cfg.Backend.Complaints.Bucket == "" {
		cfg.Backend.Complaints.Bucket = cfg.Storage.MinIO.Bucket
	}
	if cfg.Backend.Complaints.Bucket == "" {
		cfg.Backend.Complaints.Bucket = defaultPhotoBucket
	}

	if cfg.Backend.JWT.Secret == "" {
		return nil, fmt.Errorf("backend.jwt.secret is required")
	}
	switch cfg.Storage.Backend {
	case "", "memory", "minio":
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
	switch cfg.OTPStore.Backend {
	case "", kv.BackendMemory, kv.BackendRedis:
	default:
		return nil, fmt.Errorf("unknown otp store backend: %s", cfg.OTPStore.Backend)
	}
	return &cfg, nil
}
