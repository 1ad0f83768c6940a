package market

import "time"

// LogReturnSeries holds daily log returns aligned to the price rows they
// end on. Price row 0 has no return.
type LogReturnSeries struct {
	series *PriceSeries
	values [][]float64 // values[t-1] is the return ending on price row t
}

// Prices returns the series the returns were derived from.
func (lr *LogReturnSeries) Prices() *PriceSeries { return lr.series }

// Len is the number of returns, one less than the number of prices.
func (lr *LogReturnSeries) Len() int { return len(lr.values) }

func (lr *LogReturnSeries) Currencies() []string { return lr.series.currencies }

// Date returns the date a return ends on; row is a price row >= 1.
func (lr *LogReturnSeries) Date(row int) time.Time { return lr.series.dates[row] }

// At returns the return of currency c ending on price row, which must be >= 1.
func (lr *LogReturnSeries) At(row, c int) float64 { return lr.values[row-1][c] }

// Column copies the returns of currency c ending on price rows [from, to].
// from is clamped to 1, the first row with a return.
func (lr *LogReturnSeries) Column(c, from, to int) []float64 {
	if from < 1 {
		from = 1
	}
	if to > len(lr.values) {
		to = len(lr.values)
	}
	if to < from {
		return nil
	}
	out := make([]float64, 0, to-from+1)
	for row := from; row <= to; row++ {
		out = append(out, lr.values[row-1][c])
	}
	return out
}
