package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/token-ledger/pkg/model"
)

var summaryCmd = &cobra.Command{
	Use:       "summary [today|week|month|all]",
	Short:     "Show aggregated usage for a period",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"today", "week", "month", "all"},
	RunE:      runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().Bool("detailed", false, "Show individual events")
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	selector := string(model.PeriodMonth)
	if len(args) > 0 {
		selector = args[0]
	}
	detailed, _ := cmd.Flags().GetBool("detailed")

	t, store, err := initTracker(cmd, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := t.Summarize(cmd.Context(), selector)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "=== USAGE SUMMARY (%s) ===\n", strings.ToUpper(string(summary.Period)))
	fmt.Fprintf(out, "Events:         %s\n", humanize.Comma(summary.Events))
	fmt.Fprintf(out, "Total Quantity: %s\n", humanize.Comma(summary.TotalQuantity))
	fmt.Fprintf(out, "Total Cost:     $%.2f\n", summary.Cost)

	printBreakdown(out, "By Actor:", "ACTOR", summary.ByActor)
	printBreakdown(out, "By Resource Class:", "CLASS", summary.ByResourceClass)

	if !detailed {
		return nil
	}

	events, err := t.Events(cmd.Context(), selector)
	if err != nil {
		return err
	}
	if len(events) > 0 {
		fmt.Fprintf(out, "\nEvents:\n")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  ID\tTIMESTAMP\tACTOR\tCLASS\tIN\tOUT\tCOST\tSESSION\tNOTES\n")
		for _, e := range events {
			fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%d\t%d\t$%.4f\t%s\t%s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04"),
				e.Actor, e.ResourceClass,
				e.InQuantity, e.OutQuantity,
				e.Cost, e.SessionID, e.Notes,
			)
		}
		w.Flush()
	}
	return nil
}

func printBreakdown(out io.Writer, title, header string, rows []model.Breakdown) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s\n", title)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  %s\tEVENTS\tQUANTITY\tCOST\n", header)
	for _, r := range rows {
		fmt.Fprintf(w, "  %s\t%d\t%s\t$%.2f\n", r.Name, r.Events, humanize.Comma(r.Quantity), r.Cost)
	}
	w.Flush()
}
