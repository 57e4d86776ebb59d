package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/forgeflow-dev/forgeflow/internal/insight"
	"github.com/forgeflow-dev/forgeflow/internal/narrative"
)

// FileName is the default config file name in a workspace.
const FileName = "forgeflow.yaml"

// Config represents the top-level forgeflow.yaml configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Insights  InsightsConfig  `yaml:"insights"`
	Narrative NarrativeConfig `yaml:"narrative"`
	OCR       OCRConfig       `yaml:"ocr"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig controls the HTTP upload service.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	MaxUploadMB  int64         `yaml:"max_upload_mb"`
}

// StorageConfig locates uploaded files and rendered reports.
type StorageConfig struct {
	UploadDir  string `yaml:"upload_dir"`
	ReportsDir string `yaml:"reports_dir"`
}

// InsightsConfig holds the rule ladder thresholds.
type InsightsConfig struct {
	LowBalance   float64 `yaml:"low_balance"`
	Trend        float64 `yaml:"trend"`
	SurplusDelta float64 `yaml:"surplus_delta"`
}

// NarrativeConfig controls the optional generated narrative.
type NarrativeConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Model           string        `yaml:"model"`
	Timeout         time.Duration `yaml:"timeout"`
	RatePerMinute   int           `yaml:"rate_per_minute"`
	BreakerFailures uint32        `yaml:"breaker_failures"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`
	APIKey          string        `yaml:"-"` // environment only
}

// OCRConfig locates the tesseract binary.
type OCRConfig struct {
	Binary string `yaml:"binary"`
	Lang   string `yaml:"lang"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// Load reads a forgeflow.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault reads path if it exists and returns defaults otherwise.
// Environment overrides are applied in both cases.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}
	ApplyEnv(cfg)
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":5000",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			MaxUploadMB:  20,
		},
		Storage: StorageConfig{
			UploadDir:  "uploads",
			ReportsDir: "reports",
		},
		Insights: InsightsConfig{
			LowBalance:   5000,
			Trend:        50,
			SurplusDelta: 5000,
		},
		Narrative: NarrativeConfig{
			Enabled:         false,
			Model:           narrative.DefaultModelName,
			Timeout:         10 * time.Second,
			RatePerMinute:   30,
			BreakerFailures: 3,
			BreakerCooldown: time.Minute,
		},
		OCR: OCRConfig{
			Binary: "tesseract",
			Lang:   "eng",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ApplyEnv overrides settings from the environment: PORT, UPLOAD_DIR,
// LOG_LEVEL and GEMINI_API_KEY (or GOOGLE_API_KEY).
func ApplyEnv(cfg *Config) {
	if port := getEnv("PORT", ""); port != "" {
		cfg.Server.Addr = ":" + port
	}
	cfg.Storage.UploadDir = getEnv("UPLOAD_DIR", cfg.Storage.UploadDir)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Narrative.APIKey = getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", cfg.Narrative.APIKey))
}

// Thresholds converts the insight settings for the insight engine.
func (c *Config) Thresholds() insight.Thresholds {
	return insight.Thresholds{
		LowBalance:   decimal.NewFromFloat(c.Insights.LowBalance),
		Trend:        decimal.NewFromFloat(c.Insights.Trend),
		SurplusDelta: decimal.NewFromFloat(c.Insights.SurplusDelta),
	}
}

// NarrativeOptions converts the narrative settings for narrative.New.
func (c *Config) NarrativeOptions() narrative.Options {
	return narrative.Options{
		Enabled:         c.Narrative.Enabled,
		APIKey:          c.Narrative.APIKey,
		Model:           c.Narrative.Model,
		RatePerMinute:   c.Narrative.RatePerMinute,
		BreakerFailures: c.Narrative.BreakerFailures,
		BreakerCooldown: c.Narrative.BreakerCooldown,
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultVal
}
