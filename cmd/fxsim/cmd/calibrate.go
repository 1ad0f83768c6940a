package cmd

import (
	"fmt"

	"github.com/rustyeddy/fxsim/calib"
	"github.com/rustyeddy/fxsim/config"
	"github.com/rustyeddy/fxsim/market"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Show the calibrated volatilities and correlations on a date",
	Long: `Print the rolling volatility of each currency and the correlation
matrix that a run would use on one valuation date.

Example:
  fxsim calibrate -f fxsim.yaml --date 2015-06-01`,
	RunE: runCalibrate,
}

var (
	calibrateConfigPath string
	calibrateDate       string
)

func init() {
	rootCmd.AddCommand(calibrateCmd)

	calibrateCmd.Flags().StringVarP(&calibrateConfigPath, "file", "f", "", "path to config file (required)")
	calibrateCmd.Flags().StringVar(&calibrateDate, "date", "", "valuation date YYYY-MM-DD (default simulation start)")
	calibrateCmd.MarkFlagRequired("file")
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(calibrateConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	params, err := cfg.SimParams()
	if err != nil {
		return err
	}

	ps, err := market.LoadCSV(cfg.Market.PricesFile, cfg.PriceLayout())
	if err != nil {
		return fmt.Errorf("load prices: %w", err)
	}

	day := params.Start
	if calibrateDate != "" {
		day, err = market.ParseDate(market.ISOLayout, calibrateDate)
		if err != nil {
			return fmt.Errorf("date: %w", err)
		}
	}

	startRow, err := ps.Index(params.Start)
	if err != nil {
		return fmt.Errorf("simulation start: %w", err)
	}
	row, err := ps.Index(day)
	if err != nil {
		return err
	}
	if row < startRow {
		return fmt.Errorf("date %s is before the simulation start %s", calibrateDate, cfg.Simulation.Start)
	}

	vs, err := calib.Volatility(ps, params.Window())
	if err != nil {
		return err
	}
	vols, err := vs.Row(row)
	if err != nil {
		return err
	}

	from, to := calib.TrailingWindow(row, startRow)
	corr, err := calib.Correlation(ps.LogReturns(), from, to)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Calibration on %s (window %d days)\n\n", day.Format(market.ISOLayout), vs.Window())
	fmt.Fprintln(out, "Volatility")
	for c, ccy := range ps.Currencies() {
		fmt.Fprintf(out, "  %s  spot %.6f  vol %.6f\n", ccy, ps.Spot(row, c), vols[c])
	}
	fmt.Fprintf(out, "\nCorrelation %v\n", ps.Currencies())
	fmt.Fprintf(out, "%.4f\n", mat.Formatted(corr, mat.Prefix(""), mat.Squeeze()))
	return nil
}
