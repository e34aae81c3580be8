package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/fleetprice/internal/pricing"
	"github.com/Simplici0/fleetprice/internal/report"
)

// errAnomalies makes the process exit non-zero under --fail-on-anomaly.
var errAnomalies = errors.New("price curve anomalies found")

var (
	rateMin, rateMax, rateStep       float64
	commitMin, commitMax, commitStep float64
	contracts                        []int
	fleet                            float64
	priceEps                         float64
	discountEps                      float64
	outFile                          string
	xlsxFile                         string
	failOnAnomaly                    bool
)

// gridCmd represents the grid command
var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Price a parameter grid and list anomalies",
	Long: `Price every combination of monthly rate, commitment length and
contract length, write the table as TSV and report anomalies:

  - price increased while discount increased
  - price increased with longer commitment
  - longer contract not cheaper per year

When --contracts is omitted every configured contract length is swept.`,
	Args: cobra.NoArgs,
	RunE: runGrid,
}

func init() {
	addGridFlags(gridCmd)
	gridCmd.Flags().StringVarP(&outFile, "out", "o", "", "write the TSV table to this file instead of stdout")
	gridCmd.Flags().StringVar(&xlsxFile, "xlsx", "", "also write the grid and anomalies to this .xlsx workbook")
	gridCmd.Flags().BoolVar(&failOnAnomaly, "fail-on-anomaly", false, "exit non-zero when anomalies are found")
}

func addGridFlags(c *cobra.Command) {
	c.Flags().Float64Var(&rateMin, "rate-min", 5, "lowest monthly order rate")
	c.Flags().Float64Var(&rateMax, "rate-max", 50, "highest monthly order rate")
	c.Flags().Float64Var(&rateStep, "rate-step", 5, "monthly order rate step")
	c.Flags().Float64Var(&commitMin, "commit-min", 1, "shortest commitment in years")
	c.Flags().Float64Var(&commitMax, "commit-max", 5, "longest commitment in years")
	c.Flags().Float64Var(&commitStep, "commit-step", 1, "commitment step in years")
	c.Flags().IntSliceVar(&contracts, "contracts", nil, "contract lengths in years (default all configured)")
	c.Flags().Float64Var(&fleet, "fleet", 0, "existing fleet units (default from config)")
	c.Flags().Float64Var(&priceEps, "price-eps", 0.5, "ignore price moves at or below this amount")
	c.Flags().Float64Var(&discountEps, "discount-eps", 1e-6, "ignore discount moves at or below this fraction")
}

func gridFromFlags(c *cobra.Command, engine *pricing.Engine) report.Grid {
	g := report.Grid{
		RateMin: rateMin, RateMax: rateMax, RateStep: rateStep,
		CommitMin: commitMin, CommitMax: commitMax, CommitStep: commitStep,
		Contracts: contracts,
	}
	if len(g.Contracts) == 0 {
		g.Contracts = engine.Terms()
	}
	if c.Flags().Changed("fleet") {
		f := fleet
		g.Fleet = &f
	}
	return g
}

func runGrid(cmd *cobra.Command, args []string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}

	grid := gridFromFlags(cmd, engine)
	rows, err := report.Run(engine, grid)
	if err != nil {
		return err
	}
	anomalies := report.Detect(rows, report.Thresholds{PriceEps: priceEps, DiscountEps: discountEps})
	logger.Info("grid priced", zap.Int("rows", len(rows)), zap.Int("anomalies", len(anomalies)))

	if err := writeTable(cmd.OutOrStdout(), rows); err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	for _, a := range anomalies {
		fmt.Fprintln(errOut, a)
	}
	fmt.Fprintf(errOut, "%d rows, %d anomalies\n", len(rows), len(anomalies))

	if xlsxFile != "" {
		if err := report.WriteXLSX(xlsxFile, rows, anomalies); err != nil {
			return err
		}
		logger.Info("workbook written", zap.String("path", xlsxFile))
	}

	if failOnAnomaly && len(anomalies) > 0 {
		return errAnomalies
	}
	return nil
}

func writeTable(stdout io.Writer, rows []report.Row) error {
	if outFile == "" {
		return report.WriteTSV(stdout, rows)
	}
	f, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("create %s: %w", outFile, err)
	}
	if err := report.WriteTSV(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
