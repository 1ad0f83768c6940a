package dukas

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rustyeddy/fxsim/market"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Column maps a price series currency to a feed symbol. Invert takes the
// reciprocal of the quote, e.g. EURGBP for a GBP based EUR column.
type Column struct {
	Currency string
	Symbol   string
	Invert   bool
}

// ParseColumn parses CCY=SYMBOL or CCY=SYMBOL:invert, e.g. "EUR=EURGBP:invert".
func ParseColumn(s string) (Column, error) {
	ccy, sym, ok := strings.Cut(strings.TrimSpace(s), "=")
	if !ok || ccy == "" || sym == "" {
		return Column{}, fmt.Errorf("column %q: want CCY=SYMBOL[:invert]", s)
	}
	col := Column{Currency: strings.ToUpper(ccy)}
	sym, opt, _ := strings.Cut(sym, ":")
	switch opt {
	case "":
	case "invert", "inv":
		col.Invert = true
	default:
		return Column{}, fmt.Errorf("column %q: unknown option %q", s, opt)
	}
	col.Symbol = strings.ToUpper(sym)
	return col, nil
}

// Series fetches daily closes for every column and returns the dates in
// [from, to] on which all columns traded. Days with no volume are skipped.
func (c *Client) Series(ctx context.Context, cols []Column, from, to time.Time) (*market.PriceSeries, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("at least one column is required")
	}
	from, to = market.Day(from), market.Day(to)
	if to.Before(from) {
		return nil, fmt.Errorf("to %s is before from %s", to.Format(market.ISOLayout), from.Format(market.ISOLayout))
	}

	closes := make([]map[time.Time]float64, len(cols))
	for i := range closes {
		closes[i] = make(map[time.Time]float64)
	}

	var mu sync.Mutex
	workers := c.Workers
	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, col := range cols {
		for year := from.Year(); year <= to.Year(); year++ {
			i, col, year := i, col, year
			g.Go(func() error {
				candles, err := c.DayCandles(gctx, col.Symbol, year)
				if errors.Is(err, ErrNoData) {
					logrus.WithFields(logrus.Fields{"symbol": col.Symbol, "year": year}).Warn("no archive")
					return nil
				}
				if err != nil {
					return err
				}

				mu.Lock()
				defer mu.Unlock()
				for _, cd := range candles {
					d := market.Day(cd.Time)
					if cd.Volume <= 0 || cd.Close <= 0 || d.Before(from) || d.After(to) {
						continue
					}
					v := cd.Close
					if col.Invert {
						v = 1 / v
					}
					closes[i][d] = v
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var dates []time.Time
	for d := range closes[0] {
		all := true
		for _, m := range closes[1:] {
			if _, ok := m[d]; !ok {
				all = false
				break
			}
		}
		if all {
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("no common trading days between %s and %s",
			from.Format(market.ISOLayout), to.Format(market.ISOLayout))
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })

	currencies := make([]string, len(cols))
	for i, col := range cols {
		currencies[i] = col.Currency
	}
	rows := make([][]float64, len(dates))
	for r, d := range dates {
		rows[r] = make([]float64, len(cols))
		for i := range cols {
			rows[r][i] = closes[i][d]
		}
	}
	return market.NewPriceSeries(dates, currencies, rows)
}
