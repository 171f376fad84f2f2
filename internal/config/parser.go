package config

// parse reads configuration from environment variables.
func parse() (*Config, error) {
	cfg := &Config{
		// Core
		Environment: getEnv("ENVIRONMENT", "local"),
		ServiceName: getEnv("SERVICE_NAME", "quality-audit"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Record store
		Storage: StorageConfig{
			Provider:   getEnv("STORAGE_PROVIDER", "s3"),
			Bucket:     getEnv("STORAGE_BUCKET", ""),
			Prefix:     getEnv("STORAGE_PREFIX", "audit_"),
			MaxRetries: getInt("STORAGE_MAX_RETRIES", 3),
			Timeout:    getDuration("STORAGE_TIMEOUT", "30s"),
			S3: S3Config{
				Region:          getEnv("AWS_REGION", "us-east-2"),
				AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
				Endpoint:        getEnv("S3_ENDPOINT", ""),
			},
			FS: FSConfig{
				BasePath: getEnv("STORAGE_FS_BASE_PATH", ""),
			},
		},

		// HTTP server
		HTTP: HTTPConfig{
			Addr:    getEnv("HTTP_ADDR", ":8080"),
			Timeout: getDuration("HTTP_TIMEOUT", "120s"),
		},

		// Handler
		Handler: HandlerConfig{
			Timeout:        getDuration("HANDLER_TIMEOUT", "30s"),
			MaxRequestSize: int64(getInt("HANDLER_MAX_REQUEST_SIZE", 1*1024*1024)),
			EnableHealth:   getBool("HANDLER_ENABLE_HEALTH", true),
			EnableMetrics:  getBool("HANDLER_ENABLE_METRICS", true),
			Platform:       getEnv("HANDLER_PLATFORM", ""),
		},

		// Reference data
		Directory: DirectoryConfig{
			EmployeeCSV: getEnv("DIRECTORY_EMPLOYEE_CSV", "employee_data.csv"),
		},
		Scoring: ScoringConfig{
			RulesFile: getEnv("SCORING_RULES_FILE", "rules/scoring.yaml"),
		},

		// Reporting
		Report: ReportConfig{
			RecentAudits: getInt("REPORT_RECENT_AUDITS", 5),
		},
	}

	return cfg, nil
}
