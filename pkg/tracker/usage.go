// Package tracker records usage events and answers summary, budget and report queries.
package tracker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ogulcanaydogan/token-ledger/pkg/clock"
	"github.com/ogulcanaydogan/token-ledger/pkg/model"
	"github.com/ogulcanaydogan/token-ledger/pkg/report"
	"github.com/ogulcanaydogan/token-ledger/pkg/storage"
	"github.com/ogulcanaydogan/token-ledger/pkg/validate"
)

// UsageInput is a raw request to record usage.
type UsageInput = validate.EventInput

// UsageTracker is the main entry point for recording and querying usage.
// It holds no mutable state; every query reads the store.
type UsageTracker struct {
	normalizer *validate.Normalizer
	calculator *CostCalculator
	storage    storage.Storage
	budget     *BudgetManager
	clock      clock.Clock
	logger     *slog.Logger
}

// NewUsageTracker creates a usage tracker with the given dependencies.
func NewUsageTracker(
	normalizer *validate.Normalizer,
	calculator *CostCalculator,
	store storage.Storage,
	budget *BudgetManager,
	clk clock.Clock,
	logger *slog.Logger,
) *UsageTracker {
	return &UsageTracker{
		normalizer: normalizer,
		calculator: calculator,
		storage:    store,
		budget:     budget,
		clock:      clk,
		logger:     logger,
	}
}

// LogUsage validates, prices and durably records one event, accruing its
// cost into the current period. The returned event carries its id.
func (t *UsageTracker) LogUsage(ctx context.Context, in UsageInput) (*model.UsageEvent, error) {
	event, err := t.normalizer.Event(in)
	if err != nil {
		return nil, err
	}
	event.Cost = t.calculator.Cost(event.ResourceClass, event.InQuantity, event.OutQuantity)

	record, err := t.storage.Append(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("log usage: %w", err)
	}

	t.logger.Info("usage recorded",
		"id", event.ID,
		"actor", event.Actor,
		"resource_class", event.ResourceClass,
		"in_quantity", event.InQuantity,
		"out_quantity", event.OutQuantity,
		"cost", event.Cost,
		"period", record.Period,
		"accrued", record.Accrued,
	)

	t.budget.RecordAccrual(ctx, record, event.Cost)

	return event, nil
}

// Summarize aggregates usage over the window named by selector.
func (t *UsageTracker) Summarize(ctx context.Context, selector string) (*model.Summary, error) {
	period, err := model.ParsePeriodSelector(selector)
	if err != nil {
		return nil, err
	}

	summary, err := t.storage.Aggregate(ctx, period.Cutoff(t.clock.Now()))
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", period, err)
	}
	summary.Period = period
	return summary, nil
}

// Events lists individual events in the window named by selector, newest first.
func (t *UsageTracker) Events(ctx context.Context, selector string) ([]model.UsageEvent, error) {
	period, err := model.ParsePeriodSelector(selector)
	if err != nil {
		return nil, err
	}

	events, err := t.storage.QueryEvents(ctx, period.Cutoff(t.clock.Now()))
	if err != nil {
		return nil, fmt.Errorf("list events %s: %w", period, err)
	}
	return events, nil
}

// BudgetStatus reports the current period's budget.
func (t *UsageTracker) BudgetStatus(ctx context.Context) (*model.BudgetStatus, error) {
	return t.budget.Status(ctx)
}

// SetBudget sets the allowance for period (YYYY-MM), leaving accrual untouched.
func (t *UsageTracker) SetBudget(ctx context.Context, period string, amount float64) error {
	p, err := t.normalizer.Period(period)
	if err != nil {
		return err
	}
	a, err := t.normalizer.Allowance(amount)
	if err != nil {
		return err
	}

	if err := t.storage.SetAllowance(ctx, p, a); err != nil {
		return fmt.Errorf("set budget %s: %w", p, err)
	}

	t.logger.Info("budget set", "period", p, "allowance", a)
	return nil
}

// Budgets lists every stored period record, newest first.
func (t *UsageTracker) Budgets(ctx context.Context) ([]model.BudgetRecord, error) {
	records, err := t.storage.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return records, nil
}

// ExportReport renders the summary for selector and the current budget status.
func (t *UsageTracker) ExportReport(ctx context.Context, selector, format string) (string, error) {
	if _, err := report.ParseFormat(format); err != nil {
		return "", err
	}

	summary, err := t.Summarize(ctx, selector)
	if err != nil {
		return "", err
	}
	status, err := t.BudgetStatus(ctx)
	if err != nil {
		return "", err
	}

	return report.Render(summary, status, format, t.clock.Now())
}
