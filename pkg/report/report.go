// Package report renders a usage summary and budget status for people or machines.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ogulcanaydogan/token-ledger/pkg/model"
)

// Format selects the report rendering.
type Format string

const (
	Structured Format = "structured"
	Human      Format = "human"
)

const rule = "============================================================"

// ParseFormat accepts structured (alias json) and human (alias text).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "structured", "json":
		return Structured, nil
	case "human", "text":
		return Human, nil
	default:
		return "", &model.ValidationError{
			Field:   "format",
			Message: fmt.Sprintf("unknown report format %q (use structured or human)", s),
		}
	}
}

// document is the structured report shape.
type document struct {
	Usage       *model.Summary      `json:"usage"`
	Budget      *model.BudgetStatus `json:"budget"`
	GeneratedAt string              `json:"generated_at"`
}

// Render formats summary and status. generatedAt is printed as given.
func Render(summary *model.Summary, status *model.BudgetStatus, format string, generatedAt time.Time) (string, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return "", err
	}
	if summary == nil || status == nil {
		return "", &model.ValidationError{Field: "report", Message: "summary and budget status are required"}
	}

	if f == Structured {
		out, err := json.MarshalIndent(document{
			Usage:       summary,
			Budget:      status,
			GeneratedAt: generatedAt.Format(time.RFC3339),
		}, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal report: %w", err)
		}
		return string(out), nil
	}
	return renderHuman(summary, status, generatedAt), nil
}

func renderHuman(s *model.Summary, b *model.BudgetStatus, generatedAt time.Time) string {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, rule)
	fmt.Fprintf(&buf, "TOKEN LEDGER REPORT - %s\n", strings.ToUpper(string(s.Period)))
	fmt.Fprintln(&buf, rule)
	fmt.Fprintf(&buf, "Generated: %s\n\n", generatedAt.Format("2006-01-02 15:04:05"))

	fmt.Fprintln(&buf, "BUDGET STATUS:")
	fmt.Fprintf(&buf, "  Period:    %s\n", b.Period)
	fmt.Fprintf(&buf, "  Allowance: $%.2f\n", b.Allowance)
	fmt.Fprintf(&buf, "  Accrued:   $%.2f\n", b.Accrued)
	fmt.Fprintf(&buf, "  Remaining: $%.2f\n", b.Remaining)
	fmt.Fprintf(&buf, "  Usage:     %.1f%%\n", b.PercentUsed)
	fmt.Fprintf(&buf, "  Status:    %s\n\n", StatusLine(b.OnTrack))

	fmt.Fprintln(&buf, "USAGE SUMMARY:")
	fmt.Fprintf(&buf, "  Events:         %s\n", humanize.Comma(s.Events))
	fmt.Fprintf(&buf, "  In Quantity:    %s\n", humanize.Comma(s.InQuantity))
	fmt.Fprintf(&buf, "  Out Quantity:   %s\n", humanize.Comma(s.OutQuantity))
	fmt.Fprintf(&buf, "  Total Quantity: %s\n", humanize.Comma(s.TotalQuantity))
	fmt.Fprintf(&buf, "  Total Cost:     $%.2f\n\n", s.Cost)

	writeBreakdown(&buf, "BY ACTOR:", "ACTOR", s.ByActor)
	writeBreakdown(&buf, "BY RESOURCE CLASS:", "CLASS", s.ByResourceClass)

	buf.WriteString(rule)
	return buf.String()
}

func writeBreakdown(buf *bytes.Buffer, title, header string, rows []model.Breakdown) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(buf, title)
	w := tabwriter.NewWriter(buf, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "  %s\tEVENTS\tQUANTITY\tCOST\t\n", header)
	for _, r := range rows {
		fmt.Fprintf(w, "  %s\t%s\t%s\t$%.2f\t\n", r.Name, humanize.Comma(r.Events), humanize.Comma(r.Quantity), r.Cost)
	}
	w.Flush()
	buf.WriteString("\n")
}

// StatusLine is the one-line budget verdict.
func StatusLine(onTrack bool) string {
	if onTrack {
		return "[OK] On Track"
	}
	return "[WARNING] Over Budget!"
}
