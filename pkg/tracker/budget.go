package tracker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ogulcanaydogan/token-ledger/pkg/alerts"
	"github.com/ogulcanaydogan/token-ledger/pkg/clock"
	"github.com/ogulcanaydogan/token-ledger/pkg/model"
	"github.com/ogulcanaydogan/token-ledger/pkg/storage"
)

// OnTrackThresholdPct is the percent-used level at which a period stops being on track.
const OnTrackThresholdPct = 80.0

// BudgetManager computes budget status and dispatches threshold alerts.
type BudgetManager struct {
	storage   storage.Storage
	clock     clock.Clock
	notifiers []alerts.Notifier
	logger    *slog.Logger
}

// NewBudgetManager creates a budget manager.
func NewBudgetManager(store storage.Storage, clk clock.Clock, notifiers []alerts.Notifier, logger *slog.Logger) *BudgetManager {
	return &BudgetManager{
		storage:   store,
		clock:     clk,
		notifiers: notifiers,
		logger:    logger,
	}
}

// CurrentPeriod returns the period key for the manager's clock.
func (m *BudgetManager) CurrentPeriod() string {
	return model.PeriodOf(m.clock.Now())
}

// Status reports the current period's allowance, accrual and pace.
func (m *BudgetManager) Status(ctx context.Context) (*model.BudgetStatus, error) {
	record, err := m.storage.GetBudget(ctx, m.CurrentPeriod())
	if err != nil {
		return nil, fmt.Errorf("budget status: %w", err)
	}
	status := ComputeStatus(*record)
	return &status, nil
}

// ComputeStatus derives the status view of a period record. Remaining goes
// negative once accrual passes the allowance; a zero allowance reports 0%.
func ComputeStatus(record model.BudgetRecord) model.BudgetStatus {
	pct := percentUsed(record)
	return model.BudgetStatus{
		Period:      record.Period,
		Allowance:   record.Allowance,
		Accrued:     record.Accrued,
		Remaining:   record.Allowance - record.Accrued,
		PercentUsed: pct,
		OnTrack:     pct < OnTrackThresholdPct,
	}
}

func percentUsed(record model.BudgetRecord) float64 {
	if record.Allowance <= 0 {
		return 0
	}
	return record.Accrued / record.Allowance * 100
}

// RecordAccrual checks whether adding cost to record's period moved it into
// a higher alert level and, if so, notifies. record is the post-accrual state.
// Notifier failures are logged and never returned.
func (m *BudgetManager) RecordAccrual(ctx context.Context, record *model.BudgetRecord, cost float64) {
	if record == nil || record.Allowance <= 0 {
		return
	}

	before := percentUsed(model.BudgetRecord{Allowance: record.Allowance, Accrued: record.Accrued - cost})
	after := percentUsed(*record)

	level := alerts.LevelFor(after)
	if level.Rank() <= alerts.LevelFor(before).Rank() {
		return
	}

	alert := alerts.New(level, record.Period, record.Allowance, record.Accrued, after)

	m.logger.Warn("budget threshold crossed",
		"period", record.Period,
		"level", level,
		"pct", after,
		"accrued", record.Accrued,
		"allowance", record.Allowance,
		"alert_id", alert.ID,
	)

	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, alert); err != nil {
			m.logger.Error("send alert failed",
				"notifier", notifier.Name(),
				"period", record.Period,
				"error", err,
			)
		}
	}
}
