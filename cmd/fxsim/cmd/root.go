package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fxsim",
	Short: "Monte Carlo FX simulation and counterparty exposure",
	Long: `Fxsim simulates correlated FX rate paths from historical data and
computes the exposure of FX forwards along them.

It provides tools for:
  - Calibrating rolling volatilities and correlations from a rate history
  - Simulating correlated rate paths for every valuation date
  - Valuing forwards: mark-to-future, mark-to-market, EE and PFE profiles
  - Checking exposure against credit limits
  - Journaling runs to CSV or SQLite

Complete documentation is available at https://github.com/rustyeddy/fxsim`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(logLevel, logJSON)
	},
}

var (
	logLevel string
	logJSON  bool
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")
}

func setupLogging(level string, json bool) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logrus.SetLevel(lvl)
	if json {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
