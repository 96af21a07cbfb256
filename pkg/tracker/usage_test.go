package tracker_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ogulcanaydogan/token-ledger/pkg/advisory"
	"github.com/ogulcanaydogan/token-ledger/pkg/model"
	"github.com/ogulcanaydogan/token-ledger/pkg/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageTracker_LogUsage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	event, err := h.tracker.LogUsage(ctx, tracker.UsageInput{
		Actor:         "  atlas ",
		ResourceClass: "Sonnet-4.5",
		InQuantity:    1_000_000,
		OutQuantity:   1_000_000,
		SessionID:     "s-1",
		Notes:         "built the ledger",
	})
	require.NoError(t, err)
	assert.Greater(t, event.ID, int64(0))
	assert.Equal(t, "ATLAS", event.Actor)
	assert.Equal(t, "sonnet-4.5", event.ResourceClass)
	assert.Equal(t, int64(2_000_000), event.TotalQuantity)
	assert.InDelta(t, 18.00, event.Cost, 1e-9)
	assert.True(t, testNow.Equal(event.Timestamp))
	assert.Empty(t, h.advisories.All())

	events, err := h.tracker.Events(ctx, "all")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "s-1", events[0].SessionID)
	assert.Equal(t, "built the ledger", events[0].Notes)
}

func TestUsageTracker_LogUsage_ZeroQuantities(t *testing.T) {
	h := newHarness(t)

	event, err := h.tracker.LogUsage(context.Background(), tracker.UsageInput{
		Actor: "FORGE", ResourceClass: "opus-4.5",
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, event.Cost)
	assert.Equal(t, int64(0), event.TotalQuantity)
}

func TestUsageTracker_LogUsage_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		input tracker.UsageInput
	}{
		{"empty actor", tracker.UsageInput{Actor: "  ", ResourceClass: "grok"}},
		{"denied actor", tracker.UsageInput{Actor: "ATLAS; DROP TABLE", ResourceClass: "grok"}},
		{"empty class", tracker.UsageInput{Actor: "ATLAS", ResourceClass: ""}},
		{"negative output", tracker.UsageInput{Actor: "ATLAS", ResourceClass: "grok", OutQuantity: -100}},
		{"input over max", tracker.UsageInput{Actor: "ATLAS", ResourceClass: "grok", InQuantity: 10_000_001}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()

			_, err := h.tracker.LogUsage(ctx, tt.input)
			require.Error(t, err)
			assert.True(t, model.IsInvalidInput(err))

			summary, err := h.tracker.Summarize(ctx, "all")
			require.NoError(t, err)
			assert.Equal(t, int64(0), summary.Events)

			status, err := h.tracker.BudgetStatus(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0.0, status.Accrued)
		})
	}
}

func TestUsageTracker_LogUsage_MaxQuantityAccepted(t *testing.T) {
	h := newHarness(t)
	h.log(t, "ATLAS", "grok", 10_000_000, 10_000_000)
}

func TestUsageTracker_ActorCaseFolding(t *testing.T) {
	h := newHarness(t)
	for _, actor := range []string{"atlas", "Atlas", "ATLAS"} {
		h.log(t, actor, "sonnet-4.5", 1000, 1000)
	}

	summary, err := h.tracker.Summarize(context.Background(), "all")
	require.NoError(t, err)
	require.Len(t, summary.ByActor, 1)
	assert.Equal(t, "ATLAS", summary.ByActor[0].Name)
	assert.Equal(t, int64(3), summary.ByActor[0].Events)
}

func TestUsageTracker_Advisories(t *testing.T) {
	h := newHarness(t)
	h.log(t, "STRANGER", "mystery-model", 1000, 1000)

	kinds := h.advisories.Kinds()
	assert.Contains(t, kinds, advisory.UnknownActor)
	assert.Contains(t, kinds, advisory.UnknownResourceClass)
	assert.Contains(t, kinds, advisory.FallbackPricing)
}

func TestUsageTracker_NotesTruncated(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	event, err := h.tracker.LogUsage(ctx, tracker.UsageInput{
		Actor: "CLIO", ResourceClass: "grok", Notes: strings.Repeat("n", 1500),
	})
	require.NoError(t, err)
	assert.Len(t, event.Notes, 1000)
	assert.True(t, strings.HasSuffix(event.Notes, "..."))
	assert.Contains(t, h.advisories.Kinds(), advisory.NotesTruncated)

	events, err := h.tracker.Events(ctx, "all")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.Notes, events[0].Notes)
}

func TestUsageTracker_StorageFailure(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.Close())

	_, err := h.tracker.LogUsage(context.Background(), tracker.UsageInput{Actor: "ATLAS", ResourceClass: "grok"})
	require.Error(t, err)
	assert.True(t, model.IsStorageFailure(err))
	assert.False(t, model.IsInvalidInput(err))
}

func TestUsageTracker_Summarize_Windows(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// 2026-01-02: this month, outside the week
	h.clock.Set(testNow.Add(-20 * 24 * time.Hour))
	h.log(t, "ATLAS", "sonnet-4.5", 1000, 0)

	// 2026-01-19: inside the week, not today
	h.clock.Set(testNow.Add(-3 * 24 * time.Hour))
	h.log(t, "FORGE", "sonnet-4.5", 1000, 0)

	// today
	h.clock.Set(testNow)
	h.log(t, "CLIO", "sonnet-4.5", 1000, 0)

	// 2025-12: only in "all"
	h.clock.Set(time.Date(2025, time.December, 31, 12, 0, 0, 0, time.UTC))
	h.log(t, "NEXUS", "sonnet-4.5", 1000, 0)
	h.clock.Set(testNow)

	expected := map[string]int64{"today": 1, "week": 2, "month": 3, "all": 4}
	for selector, count := range expected {
		t.Run(selector, func(t *testing.T) {
			summary, err := h.tracker.Summarize(ctx, selector)
			require.NoError(t, err)
			assert.Equal(t, count, summary.Events)
			assert.Equal(t, model.PeriodSelector(selector), summary.Period)

			events, err := h.tracker.Events(ctx, selector)
			require.NoError(t, err)
			assert.Len(t, events, int(count))
		})
	}
}

func TestUsageTracker_Summarize_BreakdownsMatchTotals(t *testing.T) {
	h := newHarness(t)
	h.log(t, "ATLAS", "sonnet-4.5", 120_000, 30_000)
	h.log(t, "ATLAS", "opus-4.5", 50_000, 15_000)
	h.log(t, "FORGE", "haiku-3.5", 800_000, 200_000)
	h.log(t, "CLIO", "grok", 10, 10)

	summary, err := h.tracker.Summarize(context.Background(), "month")
	require.NoError(t, err)

	for _, groups := range [][]model.Breakdown{summary.ByActor, summary.ByResourceClass} {
		var events, quantity int64
		var cost float64
		for _, b := range groups {
			events += b.Events
			quantity += b.Quantity
			cost += b.Cost
		}
		assert.Equal(t, summary.Events, events)
		assert.Equal(t, summary.TotalQuantity, quantity)
		assert.InDelta(t, summary.Cost, cost, 1e-9)
	}

	for i := 1; i < len(summary.ByActor); i++ {
		assert.GreaterOrEqual(t, summary.ByActor[i-1].Cost, summary.ByActor[i].Cost)
	}
	assert.Equal(t, summary.InQuantity+summary.OutQuantity, summary.TotalQuantity)
}

func TestUsageTracker_Summarize_Empty(t *testing.T) {
	h := newHarness(t)

	summary, err := h.tracker.Summarize(context.Background(), "today")
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.Events)
	assert.Equal(t, 0.0, summary.Cost)
	assert.NotNil(t, summary.ByActor)
	assert.NotNil(t, summary.ByResourceClass)
}

func TestUsageTracker_Summarize_UnknownSelector(t *testing.T) {
	h := newHarness(t)
	_, err := h.tracker.Summarize(context.Background(), "fortnight")
	require.Error(t, err)
	assert.True(t, model.IsInvalidInput(err))
}

func TestUsageTracker_SetBudget(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.log(t, "ATLAS", "sonnet-4.5", 500_000, 500_000)
	require.NoError(t, h.tracker.SetBudget(ctx, "2026-01", 120))
	require.NoError(t, h.tracker.SetBudget(ctx, "2026-01", 120))
	require.NoError(t, h.tracker.SetBudget(ctx, "2025-12", 30))

	status, err := h.tracker.BudgetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 120.0, status.Allowance)
	assert.InDelta(t, 9.00, status.Accrued, 1e-9)

	budgets, err := h.tracker.Budgets(ctx)
	require.NoError(t, err)
	require.Len(t, budgets, 2)
	assert.Equal(t, "2026-01", budgets[0].Period)
	assert.Equal(t, "2025-12", budgets[1].Period)
}

func TestUsageTracker_SetBudget_Invalid(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		period string
		amount float64
	}{
		{"month 13", "2026-13", 10},
		{"month 00", "2026-00", 10},
		{"short year", "26-01", 10},
		{"single digit month", "2026-1", 10},
		{"slash", "2026/01", 10},
		{"negative", "2026-01", -1},
		{"over limit", "2026-01", 100_000.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.tracker.SetBudget(ctx, tt.period, tt.amount)
			require.Error(t, err)
			assert.True(t, model.IsInvalidInput(err))
		})
	}

	budgets, err := h.tracker.Budgets(ctx)
	require.NoError(t, err)
	assert.Empty(t, budgets)
}

func TestUsageTracker_ExportReport(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.log(t, "ATLAS", "sonnet-4.5", 500_000, 500_000)

	structured, err := h.tracker.ExportReport(ctx, "today", "json")
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(structured), &doc))
	assert.Contains(t, doc, "usage")
	assert.Contains(t, doc, "budget")
	assert.Contains(t, doc, "generated_at")

	human, err := h.tracker.ExportReport(ctx, "today", "text")
	require.NoError(t, err)
	assert.Contains(t, human, "TOKEN LEDGER REPORT - TODAY")
	assert.Contains(t, human, "BUDGET STATUS:")
	assert.Contains(t, human, "USAGE SUMMARY:")

	_, err = h.tracker.ExportReport(ctx, "today", "yaml")
	require.Error(t, err)
	assert.True(t, model.IsInvalidInput(err))

	_, err = h.tracker.ExportReport(ctx, "decade", "json")
	require.Error(t, err)
	assert.True(t, model.IsInvalidInput(err))
}
