package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/token-ledger/pkg/model"
	"github.com/ogulcanaydogan/token-ledger/pkg/report"
)

var reportCmd = &cobra.Command{
	Use:   "report [today|week|month|all] [structured|human]",
	Short: "Render a usage and budget report",
	Long: `Render usage for a period together with the current month's budget.

The structured format (alias json) is indented JSON; human (alias text)
is a plain-text layout. Defaults: month, human.`,
	Example: `  tledger report month human
  tledger report all structured > report.json`,
	Args: cobra.MaximumNArgs(2),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	selector := string(model.PeriodMonth)
	format := string(report.Human)
	if len(args) > 0 {
		selector = args[0]
	}
	if len(args) > 1 {
		format = args[1]
	}

	t, store, err := initTracker(cmd, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	out, err := t.ExportReport(cmd.Context(), selector, format)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
