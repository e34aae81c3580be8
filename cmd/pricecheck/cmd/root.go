// Package cmd provides the CLI commands for pricecheck.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/fleetprice/internal/logging"
	"github.com/Simplici0/fleetprice/internal/pricing"
)

var (
	cfgFile   string
	verbose   bool
	logFormat string

	logger = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pricecheck",
	Short: "Sweep the pricing engine and flag price-curve regressions",
	Long: `pricecheck runs the pricing engine across a grid of monthly rates,
commitment lengths and contract lengths, writes the results as a
tab-separated table and lists transitions where prices move the wrong way.

Examples:
  pricecheck grid --rate-min 5 --rate-max 50 --rate-step 5
  pricecheck grid --contracts 3,5,10 --xlsx grid.xlsx --fail-on-anomaly
  pricecheck diff --baseline old.tsv`,
	SilenceUsage:      true,
	PersistentPreRunE: initLogging,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "pricing config file, YAML or JSON (default is the built-in config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")

	rootCmd.AddCommand(gridCmd)
	rootCmd.AddCommand(diffCmd)
}

func initLogging(cmd *cobra.Command, args []string) error {
	cfg := logging.DefaultConfig()
	cfg.Format = logFormat
	cfg.Level = "warn"
	if verbose {
		cfg.Level = "debug"
	}
	l, err := logging.New(cfg)
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	logger = l
	return nil
}

func loadEngine() (*pricing.Engine, error) {
	cfg := pricing.DefaultConfig()
	if cfgFile != "" {
		loaded, err := pricing.LoadConfig(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	logger.Debug("pricing config loaded", zap.String("path", cfgFile), zap.String("mode", string(cfg.Discounts.Mode)))
	return pricing.New(cfg)
}
