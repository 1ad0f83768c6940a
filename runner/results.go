package runner

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rustyeddy/fxsim/market"
	"github.com/rustyeddy/fxsim/risk"
)

// Result is a summary of an exposure run. The full profiles are in the
// journal.
type Result struct {
	RunID        string
	Created      time.Time
	BaseCurrency string
	Currencies   []string
	Start        time.Time
	End          time.Time
	Simulations  int
	Horizon      int

	Trades []TradeResult
}

// TradeResult summarises one trade over all of its batch dates.
type TradeResult struct {
	TradeID    string
	Valuations int
	Truncated  int
	Breaches   int

	FirstDate time.Time
	FirstMTM  float64

	PeakEE     float64
	PeakEEDate time.Time
	PeakEEDay  int
}

func (tr *TradeResult) add(s *risk.Snapshot, mtm float64, d risk.Decision) {
	if tr.Valuations == 0 {
		tr.FirstDate = s.BatchDate
		tr.FirstMTM = mtm
	}
	tr.Valuations++
	if s.Truncated {
		tr.Truncated++
	}
	if !d.Allowed {
		tr.Breaches++
	}
	if d.PeakEEDay >= 0 && (tr.PeakEEDay < 0 || d.PeakEE > tr.PeakEE) {
		tr.PeakEE = d.PeakEE
		tr.PeakEEDay = d.PeakEEDay
		tr.PeakEEDate = s.BatchDate
	}
}

func PrintResult(w io.Writer, r Result) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Exposure Run")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Run ID:        %s\n", r.RunID)
	fmt.Fprintf(w, "Created:       %s\n", r.Created.Format(time.RFC3339))
	fmt.Fprintf(w, "Base:          %s\n", r.BaseCurrency)
	fmt.Fprintf(w, "Currencies:    %s\n", strings.Join(r.Currencies, " "))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Simulation")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start:         %s\n", r.Start.Format(market.ISOLayout))
	fmt.Fprintf(w, "End:           %s\n", r.End.Format(market.ISOLayout))
	fmt.Fprintf(w, "Simulations:   %d\n", r.Simulations)
	fmt.Fprintf(w, "Horizon:       %d days\n", r.Horizon)

	for _, tr := range r.Trades {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Trade %s\n", tr.TradeID)
		fmt.Fprintln(w, "--------------------------------------------------")
		fmt.Fprintf(w, "Valuations:    %d\n", tr.Valuations)
		if tr.Valuations == 0 {
			continue
		}
		fmt.Fprintf(w, "MTM:           %.2f on %s\n", tr.FirstMTM, tr.FirstDate.Format(market.ISOLayout))
		if tr.PeakEEDay >= 0 {
			fmt.Fprintf(w, "Peak EE:       %.2f on %s day %d\n",
				tr.PeakEE, tr.PeakEEDate.Format(market.ISOLayout), tr.PeakEEDay)
		}
		if tr.Truncated > 0 {
			fmt.Fprintf(w, "Truncated:     %d\n", tr.Truncated)
		}
		fmt.Fprintf(w, "Breaches:      %d\n", tr.Breaches)
	}

	fmt.Fprintln(w)
}
