// Package config loads service configuration from environment variables and
// optional .env files. Load once at startup, then read through Get.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Singleton instance management
var (
	instance *Config
	loaded   bool
)

// Load loads configuration from environment variables and .env files.
// This should be called once at application startup.
func Load() error {
	if loaded {
		return nil // Already loaded
	}

	if err := loadEnvFiles(); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}

	cfg, err := parse()
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	instance = cfg
	loaded = true
	return nil
}

// MustLoad loads configuration and panics on error.
// Use this for application initialization where errors are fatal.
func MustLoad() {
	if err := Load(); err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
}

// Get returns the current configuration.
// Returns an error if configuration hasn't been loaded.
func Get() (*Config, error) {
	if !loaded || instance == nil {
		return nil, fmt.Errorf("configuration not loaded; call Load() first")
	}
	return instance, nil
}

// MustGet returns the configuration or panics if not loaded.
func MustGet() *Config {
	cfg, err := Get()
	if err != nil {
		panic(fmt.Sprintf("failed to get configuration: %v", err))
	}
	return cfg
}

// Reset clears the configuration (useful for testing).
func Reset() {
	instance = nil
	loaded = false
}

// loadEnvFiles loads .env files in order of precedence: the base .env first,
// then an environment-specific .env.<env> overriding it.
func loadEnvFiles() error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if env != "" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Overload(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	return nil
}
