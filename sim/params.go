// Package sim generates correlated FX rate paths for every valuation date of
// a calibration run and stores them in a Cube.
package sim

import (
	"fmt"
	"runtime"
	"time"

	"github.com/rustyeddy/fxsim/market"
)

// Params fixes a simulation run. It is passed by value and never modified
// once the run starts.
type Params struct {
	// Start and End bound the valuation dates; both must be in the price
	// series. The calendar days between them also set the volatility window.
	Start time.Time
	End   time.Time

	Simulations int // paths per currency per valuation date
	Horizon     int // simulated days forward from each valuation date

	// Seed makes a run reproducible. Each valuation date draws from its own
	// stream derived from Seed and the date's row.
	Seed uint64

	// Workers bounds concurrent valuation dates. <= 0 uses GOMAXPROCS.
	Workers int
}

// Window is the volatility window in days.
func (p Params) Window() int {
	return market.CalendarDays(p.Start, p.End)
}

func (p Params) workers() int {
	if p.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return p.Workers
}

func (p Params) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return fmt.Errorf("start and end dates are required")
	}
	if p.Window() < 2 {
		return fmt.Errorf("end %s must be at least 2 days after start %s",
			p.End.Format(market.ISOLayout), p.Start.Format(market.ISOLayout))
	}
	if p.Simulations <= 0 {
		return fmt.Errorf("simulations must be positive, got %d", p.Simulations)
	}
	if p.Horizon < 0 {
		return fmt.Errorf("horizon must not be negative, got %d", p.Horizon)
	}
	return nil
}
