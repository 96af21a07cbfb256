package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ogulcanaydogan/token-ledger/pkg/pricing"
	"github.com/ogulcanaydogan/token-ledger/pkg/storage"
	"github.com/ogulcanaydogan/token-ledger/pkg/validate"
)

// EnvPrefix prefixes every environment override, e.g. TLEDGER_STORAGE_PATH.
const EnvPrefix = "TLEDGER"

// Config holds all token-ledger configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Ledger  LedgerConfig  `mapstructure:"ledger"`
	Pricing PricingConfig `mapstructure:"pricing"`
	Alerts  AlertsConfig  `mapstructure:"alerts"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// StorageConfig defines database settings.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// LedgerConfig bounds accepted input and sets period defaults.
type LedgerConfig struct {
	DefaultAllowance float64  `mapstructure:"default_allowance"`
	MaxQuantity      int64    `mapstructure:"max_quantity"`
	MaxAllowance     float64  `mapstructure:"max_allowance"`
	NotesCap         int      `mapstructure:"notes_cap"`
	KnownActors      []string `mapstructure:"known_actors"`
	Timezone         string   `mapstructure:"timezone"`
}

// PricingConfig selects the price list.
type PricingConfig struct {
	File      string  `mapstructure:"file"`
	Fallback  string  `mapstructure:"fallback"`
	UnitScale float64 `mapstructure:"unit_scale"`
}

// AlertsConfig defines alerting integrations.
type AlertsConfig struct {
	Slack   SlackConfig   `mapstructure:"slack"`
	Webhook WebhookConfig `mapstructure:"webhook"`
}

// SlackConfig defines Slack webhook settings.
type SlackConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
}

// WebhookConfig defines generic webhook settings.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Secret  string `mapstructure:"secret"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Dir returns the per-user directory holding the database and config file.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".tledger"), nil
}

// Load reads configuration from .env files, a YAML file and environment variables.
// Later sources win: defaults, file, environment.
func Load(cfgFile string) (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	loadDotEnv(".env", filepath.Join(dir, ".env"))

	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(dir)
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetDefault("storage.path", filepath.Join(dir, "ledger.db"))
	v.SetDefault("ledger.default_allowance", storage.DefaultAllowance)
	v.SetDefault("ledger.max_quantity", validate.DefaultMaxQuantity)
	v.SetDefault("ledger.max_allowance", validate.DefaultMaxAllowance)
	v.SetDefault("ledger.notes_cap", validate.DefaultNotesCap)
	v.SetDefault("ledger.known_actors", validate.DefaultKnownActors)
	v.SetDefault("ledger.timezone", "Local")
	v.SetDefault("pricing.file", "")
	v.SetDefault("pricing.fallback", pricing.DefaultFallback)
	v.SetDefault("pricing.unit_scale", pricing.DefaultUnitScale)
	v.SetDefault("alerts.slack.enabled", false)
	v.SetDefault("alerts.slack.webhook_url", "")
	v.SetDefault("alerts.slack.channel", "#token-ledger")
	v.SetDefault("alerts.webhook.enabled", false)
	v.SetDefault("alerts.webhook.url", "")
	v.SetDefault("alerts.webhook.secret", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv loads the first existing file. Variables already set are kept.
func loadDotEnv(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

// Validate rejects settings the ledger cannot run with.
func (c *Config) Validate() error {
	if c.Storage.Path == "" {
		return fmt.Errorf("config: storage.path must be set")
	}
	if c.Ledger.DefaultAllowance < 0 {
		return fmt.Errorf("config: ledger.default_allowance must not be negative")
	}
	if c.Ledger.MaxQuantity <= 0 {
		return fmt.Errorf("config: ledger.max_quantity must be positive")
	}
	if c.Ledger.MaxAllowance <= 0 {
		return fmt.Errorf("config: ledger.max_allowance must be positive")
	}
	if c.Pricing.UnitScale <= 0 {
		return fmt.Errorf("config: pricing.unit_scale must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Alerts.Slack.Enabled && c.Alerts.Slack.WebhookURL == "" {
		return fmt.Errorf("config: alerts.slack.webhook_url is required when slack alerts are enabled")
	}
	if c.Alerts.Webhook.Enabled && c.Alerts.Webhook.URL == "" {
		return fmt.Errorf("config: alerts.webhook.url is required when webhook alerts are enabled")
	}
	return nil
}

// Location resolves ledger.timezone. Empty and "Local" mean the host zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Ledger.Timezone {
	case "", "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Ledger.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: ledger.timezone: %w", err)
	}
	return loc, nil
}

// Limits converts ledger settings to validation limits.
func (c *Config) Limits() validate.Limits {
	return validate.Limits{
		MaxQuantity:  c.Ledger.MaxQuantity,
		MaxAllowance: c.Ledger.MaxAllowance,
		NotesCap:     c.Ledger.NotesCap,
		KnownActors:  c.Ledger.KnownActors,
	}
}
