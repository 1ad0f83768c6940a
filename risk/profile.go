package risk

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rustyeddy/fxsim/market"
	"github.com/rustyeddy/fxsim/sim"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// BatchDates returns the cube valuation dates on which t is live: from its
// start up to, but excluding, its maturity.
func BatchDates(t Trade, cube *sim.Cube) []time.Time {
	var out []time.Time
	for _, d := range cube.Dates() {
		if d.Before(t.Start) || !d.Before(t.Maturity) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Profile values t on every date in dates, using up to workers goroutines
// (GOMAXPROCS if <= 0). Snapshots are returned in date order. The first
// failure cancels the remaining dates.
func Profile(ctx context.Context, t Trade, cube *sim.Cube, dates []time.Time, opts Options, workers int) ([]*Snapshot, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]*Snapshot, len(dates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, d := range dates {
		if gctx.Err() != nil {
			break
		}
		i, d := i, d
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			snap, err := Value(t, d, cube, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", d.Format(market.ISOLayout), err)
			}
			out[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	truncated := 0
	for _, s := range out {
		if s.Truncated {
			truncated++
		}
	}
	if truncated > 0 {
		logrus.WithFields(logrus.Fields{
			"trade":   t.ID,
			"dates":   truncated,
			"horizon": cube.Horizon(),
		}).Warn("maturity beyond simulated horizon, profiles truncated")
	}
	return out, nil
}
