package tracker_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/ogulcanaydogan/token-ledger/pkg/advisory"
	"github.com/ogulcanaydogan/token-ledger/pkg/alerts"
	"github.com/ogulcanaydogan/token-ledger/pkg/clock"
	"github.com/ogulcanaydogan/token-ledger/pkg/pricing"
	"github.com/ogulcanaydogan/token-ledger/pkg/storage"
	"github.com/ogulcanaydogan/token-ledger/pkg/tracker"
	"github.com/ogulcanaydogan/token-ledger/pkg/validate"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.January, 22, 15, 0, 0, 0, time.UTC)

type harness struct {
	tracker    *tracker.UsageTracker
	store      *storage.SQLite
	clock      *clock.Fixed
	advisories *advisory.Recorder
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHarness(t *testing.T, notifiers ...alerts.Notifier) *harness {
	t.Helper()

	clk := clock.NewFixed(testNow)
	store, err := storage.NewSQLite(filepath.Join(t.TempDir(), "test.db"), storage.WithClock(clk))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	rec := &advisory.Recorder{}
	table := pricing.Default()
	logger := quietLogger()

	ut := tracker.NewUsageTracker(
		validate.New(validate.DefaultLimits(), table, rec),
		tracker.NewCostCalculator(table, rec),
		store,
		tracker.NewBudgetManager(store, clk, notifiers, logger),
		clk,
		logger,
	)
	return &harness{tracker: ut, store: store, clock: clk, advisories: rec}
}

func (h *harness) log(t *testing.T, actor, class string, in, out int64) {
	t.Helper()
	_, err := h.tracker.LogUsage(context.Background(), tracker.UsageInput{
		Actor:         actor,
		ResourceClass: class,
		InQuantity:    in,
		OutQuantity:   out,
	})
	require.NoError(t, err)
}
