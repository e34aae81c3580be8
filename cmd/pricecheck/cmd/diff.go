package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/fleetprice/internal/report"
)

var errPricesMoved = errors.New("prices moved against the baseline")

var (
	baselineFile string
	failOnChange bool
)

// diffCmd represents the diff command
var diffCmd = &cobra.Command{
	Use:   "diff --baseline old.tsv",
	Short: "Compare a fresh grid against a saved TSV",
	Long: `Reprice the grid and report every point whose Year 1, Year 2+ or
contract price moved by more than --price-eps against the baseline table,
plus points that exist on only one side.`,
	Args: cobra.NoArgs,
	RunE: runDiff,
}

func init() {
	addGridFlags(diffCmd)
	diffCmd.Flags().StringVar(&baselineFile, "baseline", "", "baseline TSV written by grid")
	diffCmd.Flags().BoolVar(&failOnChange, "fail-on-change", false, "exit non-zero when any price moved")
	_ = diffCmd.MarkFlagRequired("baseline")
}

func runDiff(cmd *cobra.Command, args []string) error {
	f, err := os.Open(baselineFile)
	if err != nil {
		return fmt.Errorf("open baseline: %w", err)
	}
	baseline, err := report.ReadTSV(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("read baseline %s: %w", baselineFile, err)
	}

	engine, err := loadEngine()
	if err != nil {
		return err
	}
	rows, err := report.Run(engine, gridFromFlags(cmd, engine))
	if err != nil {
		return err
	}

	changes := report.Diff(baseline, rows, priceEps)
	logger.Info("diff finished", zap.Int("baseline", len(baseline)), zap.Int("current", len(rows)), zap.Int("changes", len(changes)))

	out := cmd.OutOrStdout()
	for _, c := range changes {
		fmt.Fprintln(out, c)
	}
	fmt.Fprintf(out, "%d changes\n", len(changes))

	if failOnChange && len(changes) > 0 {
		return errPricesMoved
	}
	return nil
}
