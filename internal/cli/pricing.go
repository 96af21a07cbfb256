package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var pricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Inspect resource-class pricing",
}

var pricingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every priced resource class",
	Args:  cobra.NoArgs,
	RunE:  runPricingList,
}

func init() {
	rootCmd.AddCommand(pricingCmd)
	pricingCmd.AddCommand(pricingListCmd)
}

func runPricingList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	table, err := initPricing(cfg)
	if err != nil {
		return err
	}

	scale := humanize.Comma(int64(table.UnitScale()))
	out := cmd.OutOrStdout()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CLASS\tIN ($/%s)\tOUT ($/%s)\t\n", scale, scale)
	for _, c := range table.Classes() {
		marker := ""
		if c.Name == table.Fallback() {
			marker = "(fallback)"
		}
		fmt.Fprintf(w, "%s\t$%.2f\t$%.2f\t%s\n", c.Name, c.InRate, c.OutRate, marker)
	}
	w.Flush()

	return nil
}
