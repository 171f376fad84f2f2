package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	Reset()
	t.Setenv("STORAGE_PROVIDER", "fs")
	t.Setenv("STORAGE_FS_BASE_PATH", t.TempDir())

	require.NoError(t, Load())
	cfg := MustGet()

	assert.Equal(t, "quality-audit", cfg.ServiceName)
	assert.Equal(t, "local", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "audit_", cfg.Storage.Prefix)
	assert.Equal(t, "rules/scoring.yaml", cfg.Scoring.RulesFile)
	assert.Equal(t, 5, cfg.Report.RecentAudits)
	assert.Equal(t, 30*time.Second, cfg.Handler.Timeout)

	Reset()
}

func TestValidate_UnsupportedProvider(t *testing.T) {
	cfg := &Config{
		ServiceName: "quality-audit",
		Scoring:     ScoringConfig{RulesFile: "rules/scoring.yaml"},
		Storage:     StorageConfig{Provider: "gcs"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported storage provider")
}

func TestValidate_ProductionRequiresBucket(t *testing.T) {
	cfg := &Config{
		Environment: "production",
		ServiceName: "quality-audit",
		Scoring:     ScoringConfig{RulesFile: "rules/scoring.yaml"},
		Storage:     StorageConfig{Provider: "s3"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_BUCKET")
}

func TestGet_BeforeLoad(t *testing.T) {
	Reset()
	_, err := Get()
	assert.Error(t, err)
}
