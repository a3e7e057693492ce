package llm

import (
	"os"
	"strconv"
)

// Tier identifies an analysis capability level. Higher tiers use larger
// models with longer timeouts; the pipeline escalates through them when
// a cheaper tier's confidence is insufficient.
type Tier string

const (
	TierFast     Tier = "fast"
	TierStandard Tier = "standard"
	TierDeep     Tier = "deep"
)

// TierConfig holds per-tier model parameters.
type TierConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// Config holds all configuration for the analysis backend.
type Config struct {
	Enabled    bool
	LogCalls   bool
	Endpoint   string
	TimeoutMs  int
	MaxRetries int
	Tiers      map[Tier]TierConfig
}

// DefaultConfig returns a Config with sensible defaults.
// The backend is disabled by default; the pipeline then runs on its
// rule-based fallback only.
func DefaultConfig() Config {
	return Config{
		Enabled:    false,
		LogCalls:   false,
		Endpoint:   "http://localhost:11434",
		TimeoutMs:  15000,
		MaxRetries: 1,
		Tiers: map[Tier]TierConfig{
			TierFast:     {Model: "llama3.2:1b", Temperature: 0.1, MaxTokens: 512, TimeoutMs: 8000},
			TierStandard: {Model: "llama3.2", Temperature: 0.2, MaxTokens: 1024, TimeoutMs: 15000},
			TierDeep:     {Model: "qwen2.5:14b", Temperature: 0.3, MaxTokens: 2048, TimeoutMs: 45000},
		},
	}
}

// LoadConfig reads analysis backend configuration from environment
// variables, falling back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("REVOIR_LLM_ENABLED"); v != "" {
		cfg.Enabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("REVOIR_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("REVOIR_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("REVOIR_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("REVOIR_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}

	applyTierModelEnv(&cfg, TierFast, "REVOIR_LLM_FAST_MODEL")
	applyTierModelEnv(&cfg, TierStandard, "REVOIR_LLM_STANDARD_MODEL")
	applyTierModelEnv(&cfg, TierDeep, "REVOIR_LLM_DEEP_MODEL")
	applyTierTimeoutEnv(&cfg, TierFast, "REVOIR_LLM_FAST_TIMEOUT_MS")
	applyTierTimeoutEnv(&cfg, TierStandard, "REVOIR_LLM_STANDARD_TIMEOUT_MS")
	applyTierTimeoutEnv(&cfg, TierDeep, "REVOIR_LLM_DEEP_TIMEOUT_MS")

	return cfg
}

// TierTimeout returns the effective timeout for a given tier.
// Uses the tier-specific timeout if set, otherwise the global timeout.
func (c Config) TierTimeout(tier Tier) int {
	if tc, ok := c.Tiers[tier]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

func applyTierModelEnv(cfg *Config, tier Tier, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	tc := cfg.Tiers[tier]
	tc.Model = v
	cfg.Tiers[tier] = tc
}

func applyTierTimeoutEnv(cfg *Config, tier Tier, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	tc := cfg.Tiers[tier]
	tc.TimeoutMs = n
	cfg.Tiers[tier] = tc
}
