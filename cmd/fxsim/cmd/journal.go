package cmd

import (
	"fmt"

	"github.com/rustyeddy/fxsim/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the exposure journal",
	Long: `Query runs and valuations from a SQLite journal.

Subcommands:
  run         - Show a run and its valuations as Org
  valuations  - List the valuations of a run

Examples:
  fxsim journal run <run-id>
  fxsim journal valuations <run-id> --trade FWD-EURUSD-1`,
}

var journalRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "Show a run and its valuations as Org",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRun,
}

var journalValuationsCmd = &cobra.Command{
	Use:   "valuations <run-id>",
	Short: "List the valuations of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalValuations,
}

var (
	journalDBPath string
	journalTrade  string
	journalOrg    string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunCmd)
	journalCmd.AddCommand(journalValuationsCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./fxsim.sqlite", "path to SQLite journal DB")
	journalCmd.PersistentFlags().StringVarP(&journalTrade, "trade", "t", "", "only this trade")
	journalRunCmd.Flags().StringVarP(&journalOrg, "output", "o", "", "write the Org entry to this file")
}

func runJournalRun(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	run, err := j.GetRun(args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	vals, err := j.ListValuations(run.RunID, journalTrade)
	if err != nil {
		return fmt.Errorf("query valuations: %w", err)
	}

	if journalOrg != "" {
		if err := journal.WriteRunOrg(journalOrg, run, vals); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", journalOrg)
		return nil
	}

	s, err := journal.FormatRunOrg(run, vals)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), s)
	return nil
}

func runJournalValuations(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	vals, err := j.ListValuations(args[0], journalTrade)
	if err != nil {
		return fmt.Errorf("query valuations: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-16s %-10s %5s %12s %12s %5s  %s\n", "TRADE", "DATE", "DAYS", "MTM", "PEAK_EE", "DAY", "LIMITS")
	for _, v := range vals {
		limits := "ok"
		if !v.Allowed {
			limits = v.Violations
		}
		fmt.Fprintf(out, "%-16s %-10s %5d %12.2f %12.2f %5d  %s\n",
			v.TradeID, v.BatchDate.Format("2006-01-02"), v.DaysToMaturity, v.MTM, v.PeakEE, v.PeakEEDay, limits)
	}
	fmt.Fprintf(out, "%d valuations\n", len(vals))
	return nil
}
