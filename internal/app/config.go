package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/saadjs/pantry-cli/internal/model"
	"github.com/saadjs/pantry-cli/internal/proximity"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Environment variables read after the optional .env file.
const (
	EnvDB              = "PANTRY_DB"
	EnvRedisAddr       = "PANTRY_REDIS_ADDR"
	EnvUSDAAPIKey      = "PANTRY_USDA_API_KEY"
	EnvUPCItemDBKey    = "PANTRY_UPCITEMDB_KEY"
	EnvUPCItemDBKeyTyp = "PANTRY_UPCITEMDB_KEY_TYPE"
)

type Config struct {
	DBPath    string          `yaml:"db"`
	Storage   StorageConfig   `yaml:"storage"`
	Proximity ProximityConfig `yaml:"proximity"`
	Location  LocationConfig  `yaml:"location"`
	Lookup    LookupConfig    `yaml:"lookup"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type StorageConfig struct {
	Backend   string `yaml:"backend"`
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
	KeyPrefix string `yaml:"key_prefix"`
}

type ProximityConfig struct {
	RadiusKm      float64       `yaml:"radius_km"`
	WatchInterval time.Duration `yaml:"watch_interval"`
}

// LocationConfig is where the device is. A fixed point wins over File.
type LocationConfig struct {
	Latitude  *float64 `yaml:"latitude"`
	Longitude *float64 `yaml:"longitude"`
	File      string   `yaml:"file"`
}

type LookupConfig struct {
	Providers        []string `yaml:"providers"`
	USDAAPIKey       string   `yaml:"-"`
	UPCItemDBKey     string   `yaml:"-"`
	UPCItemDBKeyType string   `yaml:"-"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

func DefaultConfig() Config {
	return Config{
		Storage:   StorageConfig{Backend: BackendSQLite, KeyPrefix: "pantry:"},
		Proximity: ProximityConfig{RadiusKm: proximity.DefaultRadiusKm, WatchInterval: time.Minute},
	}
}

// LoadConfig layers the YAML file at path and the environment over the
// defaults. A missing file is not an error; envFile is loaded first when
// present and never overrides variables already set.
func LoadConfig(path, envFile string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if strings.TrimSpace(envFile) != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvDB)); v != "" {
		cfg.DBPath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisAddr)); v != "" {
		cfg.Storage.RedisAddr = v
		cfg.Storage.Backend = BackendRedis
	}
	cfg.Lookup.USDAAPIKey = strings.TrimSpace(os.Getenv(EnvUSDAAPIKey))
	cfg.Lookup.UPCItemDBKey = strings.TrimSpace(os.Getenv(EnvUPCItemDBKey))
	cfg.Lookup.UPCItemDBKeyType = strings.TrimSpace(os.Getenv(EnvUPCItemDBKeyTyp))
}

func (c Config) Validate() error {
	switch strings.ToLower(c.Storage.Backend) {
	case BackendSQLite, "":
	case BackendRedis:
		if strings.TrimSpace(c.Storage.RedisAddr) == "" {
			return fmt.Errorf("storage.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q (expected sqlite or redis)", c.Storage.Backend)
	}
	if c.Proximity.RadiusKm < 0 || c.Proximity.RadiusKm > proximity.MaxRadiusKm {
		return fmt.Errorf("proximity.radius_km must be within [0, %s]", strconv.FormatFloat(proximity.MaxRadiusKm, 'f', -1, 64))
	}
	if c.Proximity.WatchInterval < 0 {
		return fmt.Errorf("proximity.watch_interval must not be negative")
	}
	if (c.Location.Latitude == nil) != (c.Location.Longitude == nil) {
		return fmt.Errorf("location needs both latitude and longitude")
	}
	if c.Location.Latitude != nil {
		if err := model.ValidateCoordinates(*c.Location.Latitude, *c.Location.Longitude); err != nil {
			return fmt.Errorf("location: %w", err)
		}
	}
	return nil
}

// Point returns the configured fixed location, if any.
func (c LocationConfig) Point() (proximity.Point, bool) {
	if c.Latitude == nil || c.Longitude == nil {
		return proximity.Point{}, false
	}
	return proximity.Point{Latitude: *c.Latitude, Longitude: *c.Longitude}, true
}
