package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Core settings
	Environment string
	ServiceName string
	LogLevel    string

	// Component configurations
	Storage   StorageConfig
	HTTP      HTTPConfig
	Handler   HandlerConfig
	Directory DirectoryConfig
	Scoring   ScoringConfig
	Report    ReportConfig
}

// StorageConfig holds record store configuration.
type StorageConfig struct {
	// Provider selects the object storage adapter: "s3" or "fs".
	Provider string
	// Bucket is the S3 bucket (or fs base directory) holding audit records.
	Bucket string
	// Prefix narrows listing to audit record objects.
	Prefix string

	MaxRetries int
	Timeout    time.Duration

	S3 S3Config
	FS FSConfig
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

// FSConfig holds filesystem storage settings for local development.
type FSConfig struct {
	BasePath string
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Addr    string
	Timeout time.Duration
}

// HandlerConfig holds request handler configuration.
type HandlerConfig struct {
	Timeout        time.Duration
	MaxRequestSize int64
	EnableHealth   bool
	EnableMetrics  bool
	// Platform selects the runtime adapter ("http", "lambda");
	// auto-detected when empty.
	Platform string
}

// DirectoryConfig points at the associate directory reference data.
type DirectoryConfig struct {
	// EmployeeCSV is the path to the employee directory export
	// (email, name, reporting lead, department, LOB).
	EmployeeCSV string
}

// ScoringConfig points at the scoring rule table.
type ScoringConfig struct {
	// RulesFile is the YAML rule table: parameters, max scores,
	// sub-reason deductions and fatal flags.
	RulesFile string
}

// ReportConfig holds reporting defaults.
type ReportConfig struct {
	// RecentAudits is how many recent audits an associate snapshot lists.
	RecentAudits int
}

// Validate validates the entire configuration.
func (c *Config) Validate() error {
	var errs []string

	if c.ServiceName == "" {
		errs = append(errs, "SERVICE_NAME is required")
	}
	if c.Scoring.RulesFile == "" {
		errs = append(errs, "SCORING_RULES_FILE is required")
	}

	switch c.Storage.Provider {
	case "s3":
		if c.IsProduction() && c.Storage.Bucket == "" {
			errs = append(errs, "STORAGE_BUCKET is required in production")
		}
	case "fs":
		if c.Storage.FS.BasePath == "" {
			errs = append(errs, "STORAGE_FS_BASE_PATH is required for fs storage")
		}
	default:
		errs = append(errs, fmt.Sprintf("unsupported storage provider: %q", c.Storage.Provider))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment reports whether the service runs in a local or development
// environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "local"
}
