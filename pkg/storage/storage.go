package storage

import (
	"context"
	"time"

	"github.com/ogulcanaydogan/token-ledger/pkg/model"
)

// Storage is the durable ledger: an append-only event log plus per-period
// budget accrual records. Every failure wraps model.ErrStorageFailure.
type Storage interface {
	// Initialize creates missing tables. Safe to call on every startup.
	Initialize(ctx context.Context) error

	// Append stamps and persists event and accrues its cost into the period
	// record in a single transaction. It sets event.ID and event.Timestamp
	// and returns the period record after accrual.
	Append(ctx context.Context, event *model.UsageEvent) (*model.BudgetRecord, error)

	// SetAllowance creates or updates a period's allowance without touching accrued.
	SetAllowance(ctx context.Context, period string, amount float64) error

	// QueryEvents returns events with timestamp >= since, newest first.
	QueryEvents(ctx context.Context, since time.Time) ([]model.UsageEvent, error)

	// Aggregate returns totals and per-actor and per-class breakdowns for
	// events with timestamp >= since. Breakdowns are ordered by cost descending.
	Aggregate(ctx context.Context, since time.Time) (*model.Summary, error)

	// GetBudget returns the stored record, or an unsaved default one.
	GetBudget(ctx context.Context, period string) (*model.BudgetRecord, error)

	// ListBudgets returns every stored record, newest period first.
	ListBudgets(ctx context.Context) ([]model.BudgetRecord, error)

	// Close releases resources.
	Close() error
}
