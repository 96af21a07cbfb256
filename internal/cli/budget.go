package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/token-ledger/pkg/model"
	"github.com/ogulcanaydogan/token-ledger/pkg/report"
	"github.com/ogulcanaydogan/token-ledger/pkg/tracker"
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Show the current month's budget status",
	Args:  cobra.NoArgs,
	RunE:  runBudgetStatus,
}

var budgetSetCmd = &cobra.Command{
	Use:     "set <YYYY-MM> <amount>",
	Short:   "Set the allowance for a month",
	Example: "  tledger budget set 2026-01 60.00",
	Args:    cobra.ExactArgs(2),
	RunE:    runBudgetSet,
}

var budgetHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List every month with a stored budget",
	Args:  cobra.NoArgs,
	RunE:  runBudgetHistory,
}

func init() {
	rootCmd.AddCommand(budgetCmd)
	budgetCmd.AddCommand(budgetSetCmd)
	budgetCmd.AddCommand(budgetHistoryCmd)
}

func runBudgetStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	t, store, err := initTracker(cmd, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	status, err := t.BudgetStatus(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "=== BUDGET STATUS (%s) ===\n", status.Period)
	fmt.Fprintf(out, "Allowance: $%.2f\n", status.Allowance)
	fmt.Fprintf(out, "Accrued:   $%.2f\n", status.Accrued)
	fmt.Fprintf(out, "Remaining: $%.2f\n", status.Remaining)
	fmt.Fprintf(out, "Usage:     %.1f%%\n", status.PercentUsed)
	fmt.Fprintf(out, "Status:    %s\n", report.StatusLine(status.OnTrack))

	return nil
}

func runBudgetSet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	amount, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(args[1]), "$"), 64)
	if err != nil {
		return &model.ValidationError{Field: "allowance", Message: fmt.Sprintf("not a number: %q", args[1])}
	}

	t, store, err := initTracker(cmd, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := t.SetBudget(cmd.Context(), args[0], amount); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "[OK] Set budget for %s: $%.2f\n", args[0], amount)
	return nil
}

func runBudgetHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	t, store, err := initTracker(cmd, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	budgets, err := t.Budgets(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(budgets) == 0 {
		fmt.Fprintln(out, "No budgets recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "PERIOD\tALLOWANCE\tACCRUED\tREMAINING\tUSED\tSTATUS\n")
	for _, b := range budgets {
		s := tracker.ComputeStatus(b)
		fmt.Fprintf(w, "%s\t$%.2f\t$%.2f\t$%.2f\t%.1f%%\t%s\n",
			s.Period, s.Allowance, s.Accrued, s.Remaining, s.PercentUsed,
			report.StatusLine(s.OnTrack),
		)
	}
	w.Flush()

	return nil
}
