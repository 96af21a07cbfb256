package model

import (
	"fmt"
	"strings"
	"time"
)

// UsageEvent is a single recorded consumption by an actor against a resource class.
type UsageEvent struct {
	ID            int64     `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Actor         string    `json:"actor"`
	ResourceClass string    `json:"resource_class"`
	InQuantity    int64     `json:"in_quantity"`
	OutQuantity   int64     `json:"out_quantity"`
	TotalQuantity int64     `json:"total_quantity"`
	Cost          float64   `json:"cost"`
	SessionID     string    `json:"session_id,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}

// BudgetRecord holds the allowance and accrued spend for one calendar month.
type BudgetRecord struct {
	Period    string  `json:"period"`
	Allowance float64 `json:"allowance"`
	Accrued   float64 `json:"accrued"`
}

// BudgetStatus is the computed view of the current period's budget.
type BudgetStatus struct {
	Period      string  `json:"period"`
	Allowance   float64 `json:"allowance"`
	Accrued     float64 `json:"accrued"`
	Remaining   float64 `json:"remaining"`
	PercentUsed float64 `json:"percent_used"`
	OnTrack     bool    `json:"on_track"`
}

// Breakdown is one row of a grouped aggregate.
type Breakdown struct {
	Name     string  `json:"name"`
	Events   int64   `json:"events"`
	Quantity int64   `json:"quantity"`
	Cost     float64 `json:"cost"`
}

// Summary holds aggregated usage for a time window.
type Summary struct {
	Period          PeriodSelector `json:"period"`
	Since           time.Time      `json:"since"`
	Events          int64          `json:"events"`
	InQuantity      int64          `json:"in_quantity"`
	OutQuantity     int64          `json:"out_quantity"`
	TotalQuantity   int64          `json:"total_quantity"`
	Cost            float64        `json:"cost"`
	ByActor         []Breakdown    `json:"by_actor"`
	ByResourceClass []Breakdown    `json:"by_resource_class"`
}

// PeriodSelector names a reporting window.
type PeriodSelector string

const (
	PeriodToday PeriodSelector = "today"
	PeriodWeek  PeriodSelector = "week"
	PeriodMonth PeriodSelector = "month"
	PeriodAll   PeriodSelector = "all"
)

// Epoch is the cutoff used for PeriodAll.
var Epoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// PeriodLayout formats a time as a budget period key.
const PeriodLayout = "2006-01"

// ParsePeriodSelector validates a selector string.
func ParsePeriodSelector(s string) (PeriodSelector, error) {
	switch p := PeriodSelector(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodAll:
		return p, nil
	default:
		return "", &ValidationError{
			Field:   "period",
			Message: fmt.Sprintf("unknown period %q (use today, week, month or all)", s),
		}
	}
}

// Cutoff returns the earliest instant included in the window ending at now.
// Day and month boundaries are taken in now's location.
func (p PeriodSelector) Cutoff(now time.Time) time.Time {
	switch p {
	case PeriodToday:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		return Epoch
	}
}

// PeriodOf returns the budget period key for t.
func PeriodOf(t time.Time) string {
	return t.Format(PeriodLayout)
}
