package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Resort-conditions collaborator (HTTP polling mode).
	ConditionsURL     string
	ConditionsTimeout time.Duration
	ConditionsTTL     time.Duration

	// Radar manager tuning.
	FrameTTL             time.Duration
	TileCacheSize        int
	SourceTimeout        time.Duration
	FrameRefreshInterval time.Duration // 0 disables the warm-refresh job

	// Upstream source toggles.
	RainViewerEnabled bool
	NEXRADEnabled     bool

	// Optional Kafka conditions feed. Empty brokers = HTTP polling only.
	KafkaBrokers         []string
	KafkaConditionsTopic string
	KafkaGroupID         string
}

// KafkaEnabled reports whether the conditions feed should come from Kafka
// instead of polling the conditions HTTP endpoint.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load() // best effort; absence is the normal case in prod

	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	conditionsTimeout, err := envDuration("CONDITIONS_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	conditionsTTL, err := envDuration("CONDITIONS_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	frameTTL, err := envDuration("FRAME_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	sourceTimeout, err := envDuration("SOURCE_TIMEOUT", 4*time.Second)
	if err != nil {
		return nil, err
	}
	refreshInterval, err := envDuration("FRAME_REFRESH_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	tileCacheSize, err := envInt("TILE_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ConditionsURL:     envOrDefault("CONDITIONS_URL", "http://localhost:5001"),
		ConditionsTimeout: conditionsTimeout,
		ConditionsTTL:     conditionsTTL,

		FrameTTL:             frameTTL,
		TileCacheSize:        tileCacheSize,
		SourceTimeout:        sourceTimeout,
		FrameRefreshInterval: refreshInterval,

		RainViewerEnabled: envBool("RAINVIEWER_ENABLED", true),
		NEXRADEnabled:     envBool("NEXRAD_ENABLED", true),

		KafkaBrokers:         parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaConditionsTopic: envOrDefault("KAFKA_CONDITIONS_TOPIC", "resort-conditions"),
		KafkaGroupID:         envOrDefault("KAFKA_GROUP_ID", "powder-radar"),
	}

	if cfg.ConditionsURL == "" && !cfg.KafkaEnabled() {
		return nil, errors.New("CONDITIONS_URL is required unless KAFKA_BROKERS is set")
	}
	if cfg.TileCacheSize <= 0 {
		return nil, errors.New("TILE_CACHE_SIZE must be positive")
	}
	if cfg.FrameTTL <= 0 {
		return nil, errors.New("FRAME_TTL must be positive")
	}
	if cfg.SourceTimeout <= 0 {
		return nil, errors.New("SOURCE_TIMEOUT must be positive")
	}
	if cfg.KafkaEnabled() && cfg.KafkaConditionsTopic == "" {
		return nil, errors.New("KAFKA_CONDITIONS_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	default:
		return def
	}
}

func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
