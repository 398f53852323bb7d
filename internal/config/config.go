package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Locale   string         `yaml:"locale"` // label language, e.g. "en" or "ru"
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Path string `yaml:"path"` // SQLite database file path
}

// GRPCConfig contains gRPC server settings.
type GRPCConfig struct {
	Address string `yaml:"address"` // gRPC server listen address (e.g., ":50051")
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"` // JWT signing secret
}

// LoggingConfig controls the application logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // empty means stderr
}

// KafkaConfig enables event publishing when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Enabled reports whether events should be sent to Kafka.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

const devSecret = "dev-secret-change-me"

func defaults() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "flowers.db"},
		GRPC:     GRPCConfig{Address: ":50051"},
		Logging:  LoggingConfig{Level: "info"},
		Kafka:    KafkaConfig{Topic: "flowercrm.events"},
		Locale:   "en",
	}
}

// Load reads the optional YAML file at path, then applies environment overrides.
// JWT_SECRET (or auth.jwt_secret) must be set.
func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set; required for production")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but uses a safe default for JWT_SECRET in development.
// WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = devSecret
	}
	return cfg, nil
}

func load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.Database.Path = getEnv("DB_PATH", cfg.Database.Path)
	cfg.GRPC.Address = getEnv("GRPC_ADDRESS", cfg.GRPC.Address)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.File = getEnv("LOG_FILE", cfg.Logging.File)
	cfg.Kafka.Topic = getEnv("KAFKA_TOPIC", cfg.Kafka.Topic)
	cfg.Locale = getEnv("LOCALE", cfg.Locale)
	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		cfg.Kafka.Brokers = splitList(v)
	}
	return cfg, nil
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{DB: %s, gRPC: %s, Auth: *** (masked) ***, Log: %s, Kafka: %v, Locale: %s}",
		c.Database.Path, c.GRPC.Address, c.Logging.Level, c.Kafka.Brokers, c.Locale)
}
