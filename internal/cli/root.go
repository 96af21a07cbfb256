package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/token-ledger/internal/config"
	"github.com/ogulcanaydogan/token-ledger/pkg/advisory"
	"github.com/ogulcanaydogan/token-ledger/pkg/alerts"
	"github.com/ogulcanaydogan/token-ledger/pkg/clock"
	"github.com/ogulcanaydogan/token-ledger/pkg/pricing"
	"github.com/ogulcanaydogan/token-ledger/pkg/storage"
	"github.com/ogulcanaydogan/token-ledger/pkg/tracker"
	"github.com/ogulcanaydogan/token-ledger/pkg/validate"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tledger",
	Short: "Token Ledger - usage metering and monthly budget accounting",
	Long: `Token Ledger records resource consumption by named actors, prices it
against a per-class rate table, accrues cost into monthly budgets and
reports usage over today, the last week, this month or all time.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.tledger/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initPricing returns the configured price list: the pricing file when set,
// otherwise the built-in table with the configured fallback and unit scale.
func initPricing(cfg *config.Config) (*pricing.Table, error) {
	if cfg.Pricing.File != "" {
		t, err := pricing.LoadTable(cfg.Pricing.File)
		if err != nil {
			return nil, fmt.Errorf("load pricing: %w", err)
		}
		return t, nil
	}

	base := pricing.Default()
	if cfg.Pricing.Fallback == base.Fallback() && cfg.Pricing.UnitScale == base.UnitScale() {
		return base, nil
	}

	entries := make(map[string]pricing.Entry)
	for _, c := range base.Classes() {
		entries[c.Name] = c.Entry
	}
	t, err := pricing.NewTable(entries, cfg.Pricing.Fallback, cfg.Pricing.UnitScale)
	if err != nil {
		return nil, fmt.Errorf("build pricing: %w", err)
	}
	return t, nil
}

// initClock returns the wall clock in the configured zone.
func initClock(cfg *config.Config) (clock.Clock, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return clock.System{Location: loc}, nil
}

// initNotifiers creates alert notifiers from config.
func initNotifiers(cfg *config.Config) []alerts.Notifier {
	var notifiers []alerts.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alerts.NewSlackNotifier(
			cfg.Alerts.Slack.WebhookURL,
			cfg.Alerts.Slack.Channel,
		))
	}

	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alerts.NewWebhookNotifier(
			cfg.Alerts.Webhook.URL,
			cfg.Alerts.Webhook.Secret,
		))
	}

	return notifiers
}

// initTracker creates a fully wired usage tracker. Logs and advisories go to
// the command's error stream.
func initTracker(cmd *cobra.Command, cfg *config.Config) (*tracker.UsageTracker, storage.Storage, error) {
	logger := newLogger(cfg, cmd.ErrOrStderr())

	table, err := initPricing(cfg)
	if err != nil {
		return nil, nil, err
	}

	clk, err := initClock(cfg)
	if err != nil {
		return nil, nil, err
	}

	store, err := storage.NewSQLite(cfg.Storage.Path,
		storage.WithClock(clk),
		storage.WithDefaultAllowance(cfg.Ledger.DefaultAllowance),
	)
	if err != nil {
		return nil, nil, err
	}

	sink := advisory.NewLogSink(logger)
	budgetMgr := tracker.NewBudgetManager(store, clk, initNotifiers(cfg), logger)
	usageTracker := tracker.NewUsageTracker(
		validate.New(cfg.Limits(), table, sink),
		tracker.NewCostCalculator(table, sink),
		store,
		budgetMgr,
		clk,
		logger,
	)

	return usageTracker, store, nil
}
