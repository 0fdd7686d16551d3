package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"betbook/database"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Bet configuration
	MaxWagerAmount int64 // 0 means no limit

	// Reaper configuration
	ReaperIntervalSeconds int // how often expired pending challenges are swept

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated)

	// OpenTelemetry configuration
	OTelEnabled      bool
	OTelServiceName  string
	OTelExporterType string // "console" or "otlp"
	OTelEndpoint     string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		ReaperIntervalSeconds: 60,

		NATSServers: getEnvWithDefault("NATS_SERVERS", "nats://nats:4222"),

		OTelServiceName:  getEnvWithDefault("OTEL_SERVICE_NAME", "betbook"),
		OTelExporterType: getEnvWithDefault("OTEL_EXPORTER_TYPE", "console"),
		OTelEndpoint:     os.Getenv("OTEL_ENDPOINT"),

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if max := os.Getenv("MAX_WAGER_AMOUNT"); max != "" {
		if parsed, err := strconv.ParseInt(max, 10, 64); err == nil {
			config.MaxWagerAmount = parsed
		}
	}
	if interval := os.Getenv("REAPER_INTERVAL_SECONDS"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil && parsed > 0 {
			config.ReaperIntervalSeconds = parsed
		}
	}
	if enabled := os.Getenv("OTEL_ENABLED"); enabled != "" {
		config.OTelEnabled = enabled == "true" || enabled == "1"
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:           "test",
		ReaperIntervalSeconds: 60,
	}
}
