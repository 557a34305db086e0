package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Backend (external service layer) configuration
	BackendBaseURL string

	// Real-time event transport
	NATSUrl string

	// HTTP surface for the UI layer
	ListenAddr string

	// Snapshot polling backstop
	SnapshotPollInterval time.Duration

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		BackendBaseURL: os.Getenv("BACKEND_BASE_URL"),
		NATSUrl:        os.Getenv("NATS_URL"),
		ListenAddr:     os.Getenv("HTTP_LISTEN_ADDR"),

		// Defaults
		SnapshotPollInterval: 20 * time.Second,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if config.NATSUrl == "" {
		config.NATSUrl = "nats://localhost:4222"
	}
	if config.ListenAddr == "" {
		config.ListenAddr = ":8080"
	}

	// Override defaults if environment variables are set
	if interval := os.Getenv("SNAPSHOT_POLL_SECONDS"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil && parsed > 0 {
			config.SnapshotPollInterval = time.Duration(parsed) * time.Second
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.BackendBaseURL == "" {
			return nil, fmt.Errorf("BACKEND_BASE_URL is required")
		}
	}

	return config, nil
}
