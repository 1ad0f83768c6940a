package cmd

import (
	"fmt"

	"github.com/rustyeddy/fxsim/config"
	"github.com/rustyeddy/fxsim/journal"
	"github.com/rustyeddy/fxsim/market"
	"github.com/rustyeddy/fxsim/runner"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate rates and value the configured trades",
	Long: `Run a complete exposure run from a configuration file.

The rate history is calibrated over the simulation window, correlated rate
paths are simulated for every valuation date, and each trade is valued on
every date it is live. Valuations and EE/PFE profiles go to the journal.

Example:
  fxsim run -f fxsim.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "file", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("file")
}

func openJournal(cfg config.JournalConfig) (journal.Journal, error) {
	if cfg.Type == "csv" {
		return journal.NewCSV(cfg.ValuationsFile, cfg.ProfileFile)
	}
	return journal.NewSQLite(cfg.DBPath)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ps, err := market.LoadCSV(cfg.Market.PricesFile, cfg.PriceLayout())
	if err != nil {
		return fmt.Errorf("load prices: %w", err)
	}

	params, err := cfg.SimParams()
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	trades, err := cfg.RiskTrades()
	if err != nil {
		return err
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	r := &runner.Runner{
		Series:      ps,
		Dataset:     cfg.Market.PricesFile,
		Params:      params,
		Trades:      trades,
		Options:     opts,
		Policy:      cfg.Policy(),
		Percentiles: cfg.Exposure.Percentiles,
		Workers:     cfg.Exposure.Workers,
		Journal:     j,
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Running exposure with config: %s\n", runConfigPath)
	fmt.Fprintf(out, "  Prices: %s (%d dates, %v)\n", cfg.Market.PricesFile, ps.Len(), ps.Currencies())
	fmt.Fprintf(out, "  Trades: %d\n\n", len(trades))

	res, err := r.Run(cmd.Context())
	if err != nil {
		return err
	}
	runner.PrintResult(out, res)

	if cfg.Journal.Type == "csv" {
		fmt.Fprintf(out, "Results saved to:\n  - %s\n  - %s\n", cfg.Journal.ValuationsFile, cfg.Journal.ProfileFile)
	} else {
		fmt.Fprintf(out, "Results saved to: %s\n", cfg.Journal.DBPath)
	}
	return nil
}
