// Package calib estimates the volatility and correlation inputs of the FX
// path simulator from a daily price history.
package calib

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/fxsim/market"
	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientHistory is returned when a calibration window reaches back
// before the first available return.
var ErrInsufficientHistory = errors.New("insufficient history")

// VolSurface is the rolling volatility of every currency on every price row.
// Rows before the window fills are undefined.
type VolSurface struct {
	window int
	series *market.PriceSeries
	vols   [][]float64 // [row][currency], NaN while undefined
}

// Volatility computes, for every price row n >= window, the sample standard
// deviation of the window log returns ending on n, scaled by sqrt(window).
func Volatility(ps *market.PriceSeries, window int) (*VolSurface, error) {
	if window < 2 {
		return nil, fmt.Errorf("volatility window must be at least 2 days, got %d", window)
	}

	lr := ps.LogReturns()
	scale := math.Sqrt(float64(window))
	nccy := len(ps.Currencies())

	vs := &VolSurface{
		window: window,
		series: ps,
		vols:   make([][]float64, ps.Len()),
	}
	for n := range vs.vols {
		row := make([]float64, nccy)
		for c := range row {
			if n < window {
				row[c] = math.NaN()
				continue
			}
			row[c] = stat.StdDev(lr.Column(c, n-window+1, n), nil) * scale
		}
		vs.vols[n] = row
	}
	return vs, nil
}

func (vs *VolSurface) Window() int { return vs.window }

// Defined reports whether row has a full window behind it.
func (vs *VolSurface) Defined(row int) bool {
	return row >= vs.window && row < len(vs.vols)
}

// At returns the volatility of currency column c on price row.
func (vs *VolSurface) At(row, c int) (float64, error) {
	if !vs.Defined(row) {
		if row < 0 || row >= len(vs.vols) {
			return 0, fmt.Errorf("volatility row %d out of range [0,%d)", row, len(vs.vols))
		}
		return 0, fmt.Errorf("%w: volatility on %s needs %d returns, %d available",
			ErrInsufficientHistory, vs.series.Date(row).Format(market.ISOLayout), vs.window, row)
	}
	return vs.vols[row][c], nil
}

// AtDate looks up the volatility of currency column c on an exact date.
func (vs *VolSurface) AtDate(d time.Time, c int) (float64, error) {
	row, err := vs.series.Index(d)
	if err != nil {
		return 0, err
	}
	return vs.At(row, c)
}

// Row returns the volatilities of all currencies on price row.
func (vs *VolSurface) Row(row int) ([]float64, error) {
	out := make([]float64, len(vs.series.Currencies()))
	for c := range out {
		v, err := vs.At(row, c)
		if err != nil {
			return nil, err
		}
		out[c] = v
	}
	return out, nil
}
