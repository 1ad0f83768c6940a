package calib

import (
	"fmt"

	"github.com/rustyeddy/fxsim/market"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Correlation is the Pearson correlation matrix of the log returns ending on
// price rows [from, to]. Row 0 carries no return and is skipped.
//
// The matrix is returned as estimated. A constant column produces NaN
// entries and a short window may not be positive-definite; both are left for
// the factorization to reject.
func Correlation(lr *market.LogReturnSeries, from, to int) (*mat.SymDense, error) {
	if from < 1 {
		from = 1
	}
	if to > lr.Len() {
		return nil, fmt.Errorf("correlation window ends on row %d, last return is on row %d", to, lr.Len())
	}
	if to-from+1 < 2 {
		return nil, fmt.Errorf("%w: correlation needs at least 2 returns, window [%d,%d] has %d",
			ErrInsufficientHistory, from, to, max(0, to-from+1))
	}

	n := len(lr.Currencies())
	cols := make([][]float64, n)
	for c := range cols {
		cols[c] = lr.Column(c, from, to)
	}

	corr := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		corr.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			corr.SetSym(i, j, stat.Correlation(cols[i], cols[j], nil))
		}
	}
	return corr, nil
}

// TrailingWindow is the return window used for the correlation on price row
// row of a run whose first valuation date is on startRow: it ends on row and
// starts startRow rows earlier, so every valuation date sees the same
// number of returns as the run's first date has behind it.
func TrailingWindow(row, startRow int) (from, to int) {
	return row - startRow, row
}
