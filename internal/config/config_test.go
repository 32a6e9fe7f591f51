package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoziy/genome/curation/internal/ratelimit"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "curation.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "curation.db", cfg.Database.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.ClinVar.Enabled)
	assert.Equal(t, ratelimit.StrategyUnlimited, cfg.StorageLimit().Strategy)
	assert.Equal(t, ratelimit.DefaultConfig(), cfg.ClinVarLimit())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: /var/lib/curation/gci.db
  busy_timeout: 2s
log:
  level: debug
  format: json
clinvar:
  enabled: true
  email: curator@example.org
rate_limits:
  clinvar:
    strategy: fixed_delay
    fixed_delay: 500ms
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/curation/gci.db", cfg.Database.DSN)
	assert.Equal(t, 2*time.Second, cfg.Database.BusyTimeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.ClinVar.Enabled)

	limit := cfg.ClinVarLimit()
	assert.Equal(t, ratelimit.StrategyFixedDelay, limit.Strategy)
	assert.Equal(t, 500*time.Millisecond, limit.FixedDelay)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("CURATION_DB_DSN", "/tmp/override.db")
	t.Setenv("CURATION_LOG_LEVEL", "warn")
	t.Setenv("CURATION_CLINVAR_API_KEY", "secret")

	cfg, err := Load(writeConfig(t, "database:\n  dsn: file.db\n"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.db", cfg.Database.DSN)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "secret", cfg.ClinVar.APIKey)
	assert.Equal(t, 10.0, cfg.ClinVarLimit().RequestsPerSec)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "database: [not, a, map]\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "database:\n  dsn: \"\"\n"))
	assert.Error(t, err)
}
