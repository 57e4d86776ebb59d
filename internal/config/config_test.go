package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Server.Addr = ":9090"
	cfg.Insights.LowBalance = 2500
	cfg.Narrative.Enabled = true
	cfg.Narrative.Timeout = 3 * time.Second
	cfg.Narrative.APIKey = "secret"

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", got.Server.Addr)
	assert.InDelta(t, 2500, got.Insights.LowBalance, 0.001)
	assert.True(t, got.Narrative.Enabled)
	assert.Equal(t, 3*time.Second, got.Narrative.Timeout)
	assert.Equal(t, cfg.Storage, got.Storage)
	assert.Empty(t, got.Narrative.APIKey, "API key must never be written to disk")
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, "uploads", cfg.Storage.UploadDir)
	assert.InDelta(t, 5000, cfg.Insights.LowBalance, 0.001)
	assert.InDelta(t, 50, cfg.Insights.Trend, 0.001)
	assert.InDelta(t, 5000, cfg.Insights.SurplusDelta, 0.001)
	assert.False(t, cfg.Narrative.Enabled)
	assert.Equal(t, 10*time.Second, cfg.Narrative.Timeout)
	assert.Equal(t, "tesseract", cfg.OCR.Binary)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("insights:\n  trend: 75\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 75, cfg.Insights.Trend, 0.001)
	assert.InDelta(t, 5000, cfg.Insights.LowBalance, 0.001)
	assert.Equal(t, "eng", cfg.OCR.Lang)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadOrDefault_Missing(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("GEMINI_API_KEY", "k-123")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Server.Addr)
	assert.Equal(t, "k-123", cfg.Narrative.APIKey)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadOrDefault_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("server: [\n"), 0o644))
	_, err := LoadOrDefault(path)
	assert.Error(t, err)
}

func TestThresholds(t *testing.T) {
	th := Default().Thresholds()
	assert.Equal(t, "5000", th.LowBalance.String())
	assert.Equal(t, "50", th.Trend.String())
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "upload_dir: uploads")
	assert.Contains(t, contents, "low_balance: 5000")
	assert.Contains(t, contents, "timeout: 10s")
	assert.NotContains(t, contents, "api_key")
}
