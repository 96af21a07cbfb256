package alerts

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AlertLevel indicates how far a period's accrual has progressed through its allowance.
type AlertLevel string

const (
	AlertNone     AlertLevel = ""
	AlertWarning  AlertLevel = "warning"  // At or past WarningPct
	AlertCritical AlertLevel = "critical" // At or past CriticalPct
	AlertExceeded AlertLevel = "exceeded" // Allowance used up
)

// Level thresholds, in percent of allowance.
const (
	WarningPct  = 80.0
	CriticalPct = 95.0
	ExceededPct = 100.0
)

// LevelFor maps a percent-used figure to its alert level.
func LevelFor(pct float64) AlertLevel {
	switch {
	case pct >= ExceededPct:
		return AlertExceeded
	case pct >= CriticalPct:
		return AlertCritical
	case pct >= WarningPct:
		return AlertWarning
	default:
		return AlertNone
	}
}

// Rank orders levels so callers can tell whether a level rose.
func (l AlertLevel) Rank() int {
	switch l {
	case AlertWarning:
		return 1
	case AlertCritical:
		return 2
	case AlertExceeded:
		return 3
	default:
		return 0
	}
}

// Alert represents a budget threshold notification for one period.
type Alert struct {
	ID          string     `json:"id"`
	Level       AlertLevel `json:"level"`
	Period      string     `json:"period"`
	Allowance   float64    `json:"allowance"`
	Accrued     float64    `json:"accrued"`
	PercentUsed float64    `json:"percent_used"`
	Message     string     `json:"message"`
}

// New builds an alert with a fresh delivery id.
func New(level AlertLevel, period string, allowance, accrued, pct float64) Alert {
	return Alert{
		ID:          uuid.NewString(),
		Level:       level,
		Period:      period,
		Allowance:   allowance,
		Accrued:     accrued,
		PercentUsed: pct,
		Message: fmt.Sprintf("Budget %s at %.1f%% ($%.2f / $%.2f)",
			period, pct, accrued, allowance),
	}
}

// Notifier sends alerts to external systems.
type Notifier interface {
	// Name returns the notifier identifier.
	Name() string

	// Send delivers an alert. Implementations must be safe for concurrent use.
	Send(ctx context.Context, alert Alert) error
}
