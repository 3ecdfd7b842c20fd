package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap/zapcore"
)

var validate = validator.New()

type AppConfig struct {
	Port string `validate:"required,numeric"`

	// TickInterval controls how often a snapshot is produced for every site.
	TickInterval time.Duration `validate:"gt=0"`

	// Dataset sources. DatasetBaseURL takes precedence over DataDir.
	DataDir        string
	DatasetBaseURL string        `validate:"omitempty,url"`
	HTTPTimeout    time.Duration `validate:"gt=0"`

	// SitesFile optionally replaces the built-in site registry.
	SitesFile string

	// Location in which the fallback model reads the hour of day.
	Location *time.Location

	// RandSeed seeds the fallback model; 0 picks a time-based seed.
	RandSeed int64

	// In-memory store retention.
	StoreMaxHistory int           `validate:"gte=0"` // max number of snapshots per site (0 = unlimited)
	StoreMaxAge     time.Duration `validate:"gte=0"` // max age of snapshots (0 = unlimited)

	KafkaBrokers []string
	KafkaTopic   string `validate:"required_with=KafkaBrokers"`

	LogLevel zapcore.Level
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	cfg.Port = getenvDefault("PORT", "3000")

	if cfg.TickInterval, err = getenvDuration("TICK_INTERVAL", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", time.Hour); err != nil {
		return nil, err
	}
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 300)

	cfg.DataDir = getenvDefault("DATA_DIR", "data")
	cfg.DatasetBaseURL = os.Getenv("DATASET_BASE_URL")
	cfg.SitesFile = os.Getenv("SITES_FILE")

	tz := getenvDefault("SIM_TIMEZONE", "Local")
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid SIM_TIMEZONE: %w", err)
	}

	if v := os.Getenv("RAND_SEED"); v != "" {
		if cfg.RandSeed, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid RAND_SEED: %w", err)
		}
	}

	cfg.KafkaBrokers = splitList(os.Getenv("KAFKA_BROKERS"))
	cfg.KafkaTopic = getenvDefault("KAFKA_TOPIC", "solar.snapshots")

	if cfg.LogLevel, err = zapcore.ParseLevel(getenvDefault("LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
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

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
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
