package market

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrDateNotFound is returned when a date has no exact match in a date index.
	ErrDateNotFound = errors.New("date not found")

	// ErrUnsortedDates is returned when series dates are not strictly ascending.
	ErrUnsortedDates = errors.New("dates must be strictly ascending")
)

// PriceSeries is a daily history of spot rates, one column per currency.
// Rates are quoted as units of the currency per unit of the base currency.
type PriceSeries struct {
	dates      []time.Time
	currencies []string
	prices     [][]float64 // [row][currency]
	index      map[time.Time]int
}

// NewPriceSeries validates and indexes a price history. rows[i] holds the
// spot of every currency on dates[i], in currency order.
func NewPriceSeries(dates []time.Time, currencies []string, rows [][]float64) (*PriceSeries, error) {
	if len(currencies) == 0 {
		return nil, fmt.Errorf("price series needs at least one currency")
	}
	if len(dates) != len(rows) {
		return nil, fmt.Errorf("price series has %d dates but %d rows", len(dates), len(rows))
	}

	seen := make(map[string]bool, len(currencies))
	for _, c := range currencies {
		if c == "" {
			return nil, fmt.Errorf("empty currency name")
		}
		if seen[c] {
			return nil, fmt.Errorf("duplicate currency %s", c)
		}
		seen[c] = true
	}

	ps := &PriceSeries{
		dates:      make([]time.Time, len(dates)),
		currencies: append([]string(nil), currencies...),
		prices:     make([][]float64, len(rows)),
		index:      make(map[time.Time]int, len(dates)),
	}

	for i, d := range dates {
		d = Day(d)
		if i > 0 && !d.After(ps.dates[i-1]) {
			return nil, fmt.Errorf("%w: %s follows %s", ErrUnsortedDates,
				d.Format(ISOLayout), ps.dates[i-1].Format(ISOLayout))
		}
		if len(rows[i]) != len(currencies) {
			return nil, fmt.Errorf("row %s has %d prices, want %d",
				d.Format(ISOLayout), len(rows[i]), len(currencies))
		}
		for c, p := range rows[i] {
			if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
				return nil, fmt.Errorf("row %s: invalid %s price %v",
					d.Format(ISOLayout), currencies[c], p)
			}
		}
		ps.dates[i] = d
		ps.prices[i] = append([]float64(nil), rows[i]...)
		ps.index[d] = i
	}
	return ps, nil
}

func (ps *PriceSeries) Len() int { return len(ps.dates) }

// Dates returns the date index. The slice must not be modified.
func (ps *PriceSeries) Dates() []time.Time { return ps.dates }

// Currencies returns the currency columns in file order.
func (ps *PriceSeries) Currencies() []string { return ps.currencies }

func (ps *PriceSeries) Date(row int) time.Time { return ps.dates[row] }

// Spot returns the price of currency column c on row.
func (ps *PriceSeries) Spot(row, c int) float64 { return ps.prices[row][c] }

// Index returns the row of an exact date match.
func (ps *PriceSeries) Index(d time.Time) (int, error) {
	i, ok := ps.index[Day(d)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrDateNotFound, Day(d).Format(ISOLayout))
	}
	return i, nil
}

// LogReturns computes ln(p_t) - ln(p_{t-1}) per currency.
func (ps *PriceSeries) LogReturns() *LogReturnSeries {
	n := len(ps.prices) - 1
	if n < 0 {
		n = 0
	}
	lr := &LogReturnSeries{
		series: ps,
		values: make([][]float64, n),
	}
	for t := 1; t < len(ps.prices); t++ {
		row := make([]float64, len(ps.currencies))
		for c := range row {
			row[c] = math.Log(ps.prices[t][c]) - math.Log(ps.prices[t-1][c])
		}
		lr.values[t-1] = row
	}
	return lr
}
