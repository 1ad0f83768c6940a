package risk

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/rustyeddy/fxsim/market"
	"github.com/rustyeddy/fxsim/sim"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrUnknownCurrency is returned when a leg currency is neither the base
	// currency nor simulated in the cube.
	ErrUnknownCurrency = errors.New("unknown currency")

	// ErrUnvaluedTrade is returned when exposure is requested from a
	// position that has never been valued.
	ErrUnvaluedTrade = errors.New("trade has not been valued")

	// ErrInvalidDate is returned when a batch date is not a valuation date
	// of the cube.
	ErrInvalidDate = errors.New("invalid batch date")

	// ErrEmptyHorizon is returned for the MTM of a valuation with no
	// remaining days, i.e. on the maturity date itself.
	ErrEmptyHorizon = errors.New("no remaining horizon")
)

// Conversion selects how a foreign pay leg is converted to the base currency.
type Conversion int

const (
	// ConvertPath divides the notional by each simulation's rate on each day.
	ConvertPath Conversion = iota

	// ConvertSpot divides the notional by a single rate, the first
	// simulation's day 0 value (the valuation date spot), for every
	// simulation and day. Kept to reproduce earlier results.
	ConvertSpot
)

func (c Conversion) String() string {
	switch c {
	case ConvertPath:
		return "path"
	case ConvertSpot:
		return "spot"
	default:
		return fmt.Sprintf("Conversion(%d)", int(c))
	}
}

// ParseConversion accepts "path" (or "") and "spot".
func ParseConversion(s string) (Conversion, error) {
	switch s {
	case "", "path":
		return ConvertPath, nil
	case "spot":
		return ConvertSpot, nil
	}
	return 0, fmt.Errorf("unknown pay leg conversion %q (want path or spot)", s)
}

// Options are the valuation conventions shared by every trade of a run.
type Options struct {
	// BaseCurrency is the reporting currency. Cube rates are units of a
	// currency per unit of BaseCurrency.
	BaseCurrency string
	PayLeg       Conversion
}

// Snapshot is the mark-to-future of one trade on one batch date.
type Snapshot struct {
	TradeID   string
	BatchDate time.Time

	// Matured is set when the batch date is after maturity. MTF is then all
	// zero with one column per cube currency.
	Matured bool

	// DaysToMaturity counts calendar days from BatchDate to maturity. It is
	// negative once matured.
	DaysToMaturity int

	// Truncated is set when DaysToMaturity exceeds the cube horizon and the
	// profile stops at the horizon.
	Truncated bool

	// MTF is the undiscounted receive minus pay value in base currency,
	// indexed [simulation][day].
	MTF [][]float64
}

// Value computes the mark-to-future of t on batch. Leg currencies are checked
// before any tensor work. Value does not retain anything; see Position for
// a holder of the latest valuation.
func Value(t Trade, batch time.Time, cube *sim.Cube, opts Options) (*Snapshot, error) {
	for _, leg := range []Leg{t.Receive, t.Pay} {
		if leg.Currency == opts.BaseCurrency {
			continue
		}
		if _, ok := cube.CurrencyIndex(leg.Currency); !ok {
			return nil, fmt.Errorf("trade %s: %w %s (simulated: %v, base: %s)",
				t.ID, ErrUnknownCurrency, leg.Currency, cube.Currencies(), opts.BaseCurrency)
		}
	}

	d, err := cube.DateIndex(batch)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDate, err)
	}

	batch = market.Day(batch)
	snap := &Snapshot{
		TradeID:        t.ID,
		BatchDate:      batch,
		DaysToMaturity: market.CalendarDays(batch, t.Maturity),
	}
	_, nccy, nsims, horizon := cube.Shape()

	if batch.After(t.Maturity) {
		snap.Matured = true
		snap.MTF = zeros(nsims, nccy)
		return snap, nil
	}

	days := snap.DaysToMaturity
	if days > horizon {
		days = horizon
		snap.Truncated = true
	}

	rec := legValue(t.Receive, cube, d, days, ConvertPath, opts.BaseCurrency)
	pay := legValue(t.Pay, cube, d, days, opts.PayLeg, opts.BaseCurrency)
	for i := range rec {
		floats.Sub(rec[i], pay[i])
	}
	snap.MTF = rec
	return snap, nil
}

// legValue converts a leg to base currency for every simulation over the
// first days of the horizon.
func legValue(leg Leg, cube *sim.Cube, d, days int, conv Conversion, base string) [][]float64 {
	notional := leg.Notional.InexactFloat64()
	out := make([][]float64, cube.Simulations())

	if leg.Currency == base {
		for i := range out {
			out[i] = filled(days, notional)
		}
		return out
	}

	k, _ := cube.CurrencyIndex(leg.Currency)
	if conv == ConvertSpot && days > 0 {
		v := notional / cube.At(d, k, 0, 0)
		for i := range out {
			out[i] = filled(days, v)
		}
		return out
	}

	for i := range out {
		path := cube.Path(d, k, i)
		row := make([]float64, days)
		for j := range row {
			row[j] = notional / path[j]
		}
		out[i] = row
	}
	return out
}

func filled(n int, v float64) []float64 {
	row := make([]float64, n)
	for j := range row {
		row[j] = v
	}
	return row
}

func zeros(rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	return out
}

// Days is the number of horizon columns in MTF.
func (s *Snapshot) Days() int {
	if len(s.MTF) == 0 {
		return 0
	}
	return len(s.MTF[0])
}

func (s *Snapshot) column(j int) []float64 {
	col := make([]float64, len(s.MTF))
	for i, row := range s.MTF {
		col[i] = row[j]
	}
	return col
}

// MTM is the mean MTF across simulations on the first remaining day.
func (s *Snapshot) MTM() (float64, error) {
	if s.Days() == 0 {
		return 0, fmt.Errorf("trade %s on %s: %w", s.TradeID, s.BatchDate.Format(market.ISOLayout), ErrEmptyHorizon)
	}
	return stat.Mean(s.column(0), nil), nil
}

// EE is the expected exposure per day: the mean across simulations of
// max(MTF, 0).
func (s *Snapshot) EE() []float64 {
	ee := make([]float64, s.Days())
	for j := range ee {
		col := s.column(j)
		for i, v := range col {
			col[i] = math.Max(v, 0)
		}
		ee[j] = stat.Mean(col, nil)
	}
	return ee
}

// PFE is the potential future exposure per day: the p-th percentile of MTF
// across simulations, taking the nearest rank.
func (s *Snapshot) PFE(p float64) ([]float64, error) {
	if p < 0 || p > 100 || math.IsNaN(p) {
		return nil, fmt.Errorf("percentile %v outside [0,100]", p)
	}
	pfe := make([]float64, s.Days())
	for j := range pfe {
		col := s.column(j)
		slices.Sort(col)
		pfe[j] = nearestRank(col, p)
	}
	return pfe, nil
}

// nearestRank picks sorted[round(p/100*(n-1))], rounding halves to even.
func nearestRank(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	idx := int(math.RoundToEven(p / 100 * float64(len(sorted)-1)))
	return sorted[idx]
}

// PeakEE returns the largest expected exposure and the day it occurs on.
func (s *Snapshot) PeakEE() (float64, int) {
	ee := s.EE()
	if len(ee) == 0 {
		return 0, -1
	}
	i := floats.MaxIdx(ee)
	return ee[i], i
}
