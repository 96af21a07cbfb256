package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/token-ledger/pkg/model"
	"github.com/ogulcanaydogan/token-ledger/pkg/tokenizer"
	"github.com/ogulcanaydogan/token-ledger/pkg/tracker"
)

var logCmd = &cobra.Command{
	Use:   "log <actor> <resource-class> <in> <out> [notes...]",
	Short: "Record one usage event",
	Long: `Record one usage event for an actor against a resource class.

With --in-file or --out-file the quantities are counted from the files'
text instead, and the <in> <out> arguments are omitted.`,
	Example: `  tledger log ATLAS sonnet-4.5 50000 15000 "Built the ledger"
  tledger log FORGE opus-4.5 --in-file prompt.txt --out-file reply.txt`,
	Args: cobra.MinimumNArgs(2),
	RunE: runLog,
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().String("session", "", "Session identifier")
	logCmd.Flags().String("in-file", "", "Count input quantity from this file")
	logCmd.Flags().String("out-file", "", "Count output quantity from this file")
	logCmd.Flags().Bool("estimate", false, "Estimate file quantities at four characters per unit")
}

func runLog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	session, _ := cmd.Flags().GetString("session")
	inFile, _ := cmd.Flags().GetString("in-file")
	outFile, _ := cmd.Flags().GetString("out-file")
	estimate, _ := cmd.Flags().GetBool("estimate")

	input := tracker.UsageInput{
		Actor:         args[0],
		ResourceClass: args[1],
		SessionID:     session,
	}

	rest := args[2:]
	if inFile != "" || outFile != "" {
		if input.InQuantity, err = countFile(inFile, input.ResourceClass, estimate); err != nil {
			return err
		}
		if input.OutQuantity, err = countFile(outFile, input.ResourceClass, estimate); err != nil {
			return err
		}
	} else {
		if len(rest) < 2 {
			return fmt.Errorf("expected <in> and <out> quantities (or --in-file/--out-file)")
		}
		if input.InQuantity, err = parseQuantity("in_quantity", rest[0]); err != nil {
			return err
		}
		if input.OutQuantity, err = parseQuantity("out_quantity", rest[1]); err != nil {
			return err
		}
		rest = rest[2:]
	}
	input.Notes = strings.Join(rest, " ")

	t, store, err := initTracker(cmd, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	event, err := t.LogUsage(cmd.Context(), input)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "[OK] Logged %s units (%s) for %s - $%.4f [id %d]\n",
		humanize.Comma(event.TotalQuantity), event.ResourceClass, event.Actor, event.Cost, event.ID)
	return nil
}

func parseQuantity(field, raw string) (int64, error) {
	q, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, &model.ValidationError{Field: field, Message: fmt.Sprintf("not an integer: %q", raw)}
	}
	return q, nil
}

func countFile(path, class string, estimate bool) (int64, error) {
	if path == "" {
		return 0, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	if estimate {
		return tokenizer.Estimate(string(data)), nil
	}
	n, err := tokenizer.CountTokens(string(data), class)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", path, err)
	}
	return n, nil
}
