// Package config provides YAML-based configuration loading with
// environment variable expansion and validation.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/lmercadier/revoir/internal/analysis"
	"github.com/lmercadier/revoir/internal/llm"
	"github.com/lmercadier/revoir/internal/worker"
)

// Config is the application configuration.
type Config struct {
	App    AppConfig    `yaml:"app"`
	Vault  VaultConfig  `yaml:"vault"`
	Worker WorkerConfig `yaml:"worker"`
	LLM    LLMConfig    `yaml:"llm"`
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Worker.Validate(); err != nil {
		return err
	}
	return c.LLM.Validate()
}

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	DBPath   string     `yaml:"db_path"`
}

func (c *AppConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DBPath, validation.Required),
	)
}

// VaultConfig holds the optional markdown vault to mirror. An empty
// path disables the importer and watcher.
type VaultConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// WorkerConfig is the orchestrator loop's tuning surface, in the
// units the file format uses (seconds, minutes, hours).
type WorkerConfig struct {
	MaxDailyReviews   int `yaml:"max_daily_reviews"`
	MaxDailyRetouches int `yaml:"max_daily_retouches"`
	MaxSessionMinutes int `yaml:"max_session_minutes"`

	SleepBetweenReviewsSeconds int `yaml:"sleep_between_reviews_seconds"`
	SleepWhenIdleSeconds       int `yaml:"sleep_when_idle_seconds"`
	SleepOnErrorSeconds        int `yaml:"sleep_on_error_seconds"`

	IngestionIntervalSeconds    int `yaml:"ingestion_interval_seconds"`
	JanitorIntervalHours        int `yaml:"janitor_interval_hours"`
	IndexRefreshIntervalMinutes int `yaml:"index_refresh_interval_minutes"`

	RetoucheBatchSize int `yaml:"retouche_batch_size"`

	QuietHoursStart int `yaml:"quiet_hours_start"`
	QuietHoursEnd   int `yaml:"quiet_hours_end"`

	DigestHour     int `yaml:"digest_hour"`
	DigestMaxItems int `yaml:"digest_max_items"`

	AutoApplyThreshold   float64 `yaml:"auto_apply_threshold"`
	RestructureThreshold float64 `yaml:"restructure_threshold"`
}

func (c *WorkerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxDailyReviews, validation.Min(0)),
		validation.Field(&c.MaxDailyRetouches, validation.Min(0)),
		validation.Field(&c.QuietHoursStart, validation.Min(0), validation.Max(23)),
		validation.Field(&c.QuietHoursEnd, validation.Min(0), validation.Max(23)),
		validation.Field(&c.DigestHour, validation.Min(0), validation.Max(23)),
		validation.Field(&c.AutoApplyThreshold, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.RestructureThreshold, validation.Min(0.0), validation.Max(1.0)),
	)
}

// Options converts the section to loop options; zero fields pick up
// the loop defaults.
func (c *WorkerConfig) Options() worker.Options {
	return worker.Options{
		MaxDailyReviews:      c.MaxDailyReviews,
		MaxDailyRetouches:    c.MaxDailyRetouches,
		MaxSessionMinutes:    c.MaxSessionMinutes,
		SleepBetweenReviews:  time.Duration(c.SleepBetweenReviewsSeconds) * time.Second,
		SleepWhenIdle:        time.Duration(c.SleepWhenIdleSeconds) * time.Second,
		SleepOnError:         time.Duration(c.SleepOnErrorSeconds) * time.Second,
		IngestionInterval:    time.Duration(c.IngestionIntervalSeconds) * time.Second,
		JanitorInterval:      time.Duration(c.JanitorIntervalHours) * time.Hour,
		IndexRefreshInterval: time.Duration(c.IndexRefreshIntervalMinutes) * time.Minute,
		RetoucheBatchSize:    c.RetoucheBatchSize,
		QuietHoursStart:      c.QuietHoursStart,
		QuietHoursEnd:        c.QuietHoursEnd,
		DigestHour:           c.DigestHour,
		DigestMaxItems:       c.DigestMaxItems,
		Policy: analysis.Policy{
			AutoApplyThreshold:   c.AutoApplyThreshold,
			RestructureThreshold: c.RestructureThreshold,
		},
	}.Normalize()
}

// LLMConfig holds the analysis backend settings. Tier models fall back
// to the built-in defaults when unset.
type LLMConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	LogCalls bool   `yaml:"log_calls"`

	FastModel     string `yaml:"fast_model"`
	StandardModel string `yaml:"standard_model"`
	DeepModel     string `yaml:"deep_model"`
}

func (c *LLMConfig) Validate() error {
	if c.Enabled && c.Endpoint == "" {
		return fmt.Errorf("llm: enabled but endpoint is empty")
	}
	return nil
}

// Backend converts the section to the llm client configuration,
// starting from environment-aware defaults.
func (c *LLMConfig) Backend() llm.Config {
	cfg := llm.LoadConfig()
	cfg.Enabled = c.Enabled
	cfg.LogCalls = c.LogCalls
	if c.Endpoint != "" {
		cfg.Endpoint = c.Endpoint
	}
	overrideModel(cfg.Tiers, llm.TierFast, c.FastModel)
	overrideModel(cfg.Tiers, llm.TierStandard, c.StandardModel)
	overrideModel(cfg.Tiers, llm.TierDeep, c.DeepModel)
	return cfg
}

func overrideModel(tiers map[llm.Tier]llm.TierConfig, tier llm.Tier, model string) {
	if model == "" {
		return
	}
	tc := tiers[tier]
	tc.Model = model
	tiers[tier] = tc
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		App: AppConfig{
			LogLevel: slog.LevelInfo,
			DBPath:   "revoir.db",
		},
		Worker: WorkerConfig{
			MaxDailyReviews:             50,
			MaxDailyRetouches:           100,
			MaxSessionMinutes:           5,
			SleepBetweenReviewsSeconds:  10,
			SleepWhenIdleSeconds:        300,
			SleepOnErrorSeconds:         60,
			IngestionIntervalSeconds:    60,
			JanitorIntervalHours:        24,
			IndexRefreshIntervalMinutes: 30,
			RetoucheBatchSize:           10,
			QuietHoursStart:             23,
			QuietHoursEnd:               7,
			DigestHour:                  6,
			DigestMaxItems:              20,
			AutoApplyThreshold:          analysis.DefaultAutoApplyThreshold,
			RestructureThreshold:        analysis.DefaultRestructureThreshold,
		},
	}
}

// Load reads a YAML file with environment variable expansion and
// validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
