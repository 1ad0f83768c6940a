package sim

import (
	"fmt"
	"time"

	"github.com/rustyeddy/fxsim/market"
)

// Cube is the simulated rate tensor indexed
// [valuationDate, currency, simulation, horizonDay]. A cube is complete and
// read-only once returned by Build or FromPaths, so any number of
// valuations may share it.
type Cube struct {
	dates      []time.Time
	currencies []string
	dateIndex  map[time.Time]int
	ccyIndex   map[string]int
	sims       int
	horizon    int
	data       []float64
}

func newCube(dates []time.Time, currencies []string, sims, horizon int) *Cube {
	c := &Cube{
		dates:      append([]time.Time(nil), dates...),
		currencies: append([]string(nil), currencies...),
		dateIndex:  make(map[time.Time]int, len(dates)),
		ccyIndex:   make(map[string]int, len(currencies)),
		sims:       sims,
		horizon:    horizon,
		data:       make([]float64, len(dates)*len(currencies)*sims*horizon),
	}
	for i, d := range c.dates {
		c.dates[i] = market.Day(d)
		c.dateIndex[c.dates[i]] = i
	}
	for i, ccy := range c.currencies {
		c.ccyIndex[ccy] = i
	}
	return c
}

// FromPaths builds a cube from a complete tensor paths[date][currency][sim][day].
// Every date must carry every currency with the same simulation and
// horizon counts.
func FromPaths(dates []time.Time, currencies []string, paths [][][][]float64) (*Cube, error) {
	if len(paths) != len(dates) {
		return nil, fmt.Errorf("cube has %d dates but %d date slices", len(dates), len(paths))
	}
	if len(dates) == 0 || len(currencies) == 0 {
		return nil, fmt.Errorf("cube needs at least one date and one currency")
	}
	if len(paths[0]) != len(currencies) || len(paths[0][0]) == 0 {
		return nil, fmt.Errorf("cube date slice must have %d currencies with at least one simulation", len(currencies))
	}
	sims, horizon := len(paths[0][0]), len(paths[0][0][0])

	for i := 1; i < len(dates); i++ {
		if !market.Day(dates[i]).After(market.Day(dates[i-1])) {
			return nil, fmt.Errorf("%w: cube dates", market.ErrUnsortedDates)
		}
	}

	c := newCube(dates, currencies, sims, horizon)
	if len(c.ccyIndex) != len(currencies) {
		return nil, fmt.Errorf("duplicate currency in %v", currencies)
	}
	for d := range paths {
		if len(paths[d]) != len(currencies) {
			return nil, fmt.Errorf("date %d has %d currencies, want %d", d, len(paths[d]), len(currencies))
		}
		for k := range paths[d] {
			if err := c.setPaths(d, k, paths[d][k]); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func (c *Cube) offset(d, ccy, i, h int) int {
	return ((d*len(c.currencies)+ccy)*c.sims+i)*c.horizon + h
}

func (c *Cube) setPaths(d, ccy int, paths [][]float64) error {
	if len(paths) != c.sims {
		return fmt.Errorf("date %d currency %d: %d simulations, want %d", d, ccy, len(paths), c.sims)
	}
	for i, row := range paths {
		if len(row) != c.horizon {
			return fmt.Errorf("date %d currency %d sim %d: %d days, want %d", d, ccy, i, len(row), c.horizon)
		}
		copy(c.data[c.offset(d, ccy, i, 0):], row)
	}
	return nil
}

// Shape returns the length of each axis.
func (c *Cube) Shape() (dates, currencies, sims, horizon int) {
	return len(c.dates), len(c.currencies), c.sims, c.horizon
}

func (c *Cube) Simulations() int { return c.sims }
func (c *Cube) Horizon() int     { return c.horizon }

// Dates is the valuation date index of the first axis. Do not modify.
func (c *Cube) Dates() []time.Time { return c.dates }

// Start is the first valuation date of the run.
func (c *Cube) Start() time.Time { return c.dates[0] }

// Currencies is the currency index of the second axis, in price file order.
func (c *Cube) Currencies() []string { return c.currencies }

// CurrencyIndex maps a currency code to its axis position.
func (c *Cube) CurrencyIndex(ccy string) (int, bool) {
	i, ok := c.ccyIndex[ccy]
	return i, ok
}

// DateIndex maps an exact valuation date to its axis position.
func (c *Cube) DateIndex(d time.Time) (int, error) {
	i, ok := c.dateIndex[market.Day(d)]
	if !ok {
		return 0, fmt.Errorf("%w: %s is not a valuation date", market.ErrDateNotFound, market.Day(d).Format(market.ISOLayout))
	}
	return i, nil
}

// At returns one simulated rate.
func (c *Cube) At(d, ccy, i, h int) float64 {
	return c.data[c.offset(d, ccy, i, h)]
}

// Path returns the simulated horizon of one simulation. The slice aliases
// the cube and must not be modified.
func (c *Cube) Path(d, ccy, i int) []float64 {
	off := c.offset(d, ccy, i, 0)
	return c.data[off : off+c.horizon : off+c.horizon]
}
