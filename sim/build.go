package sim

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rustyeddy/fxsim/calib"
	"github.com/rustyeddy/fxsim/market"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Build calibrates and simulates every valuation date in [p.Start, p.End]
// and returns the finished cube.
//
// Each date is independent: its correlation matrix comes from the trailing
// return window ending on it, its spot and volatility from its own row, and
// its normals from a stream seeded by p.Seed and the row. All currencies of
// a date share one batch of correlated draws. Dates are spread over
// p.Workers goroutines and the context is checked between dates. Any failure
// aborts the run and no cube is returned.
func Build(ctx context.Context, ps *market.PriceSeries, p Params) (*Cube, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("simulation params: %w", err)
	}

	startRow, err := ps.Index(p.Start)
	if err != nil {
		return nil, fmt.Errorf("calibration start: %w", err)
	}
	endRow, err := ps.Index(p.End)
	if err != nil {
		return nil, fmt.Errorf("calibration end: %w", err)
	}

	vols, err := calib.Volatility(ps, p.Window())
	if err != nil {
		return nil, err
	}
	if !vols.Defined(startRow) {
		return nil, fmt.Errorf("%w: %d day volatility window needs %d returns before %s, have %d",
			calib.ErrInsufficientHistory, p.Window(), p.Window(), p.Start.Format(market.ISOLayout), startRow)
	}

	log := logrus.WithFields(logrus.Fields{
		"start":       p.Start.Format(market.ISOLayout),
		"end":         p.End.Format(market.ISOLayout),
		"dates":       endRow - startRow + 1,
		"currencies":  len(ps.Currencies()),
		"simulations": p.Simulations,
		"horizon":     p.Horizon,
		"window":      p.Window(),
	})
	log.Info("building simulation cube")
	began := time.Now()

	b := &builder{
		params:   p,
		series:   ps,
		returns:  ps.LogReturns(),
		vols:     vols,
		grid:     TimeGrid(p.Horizon),
		startRow: startRow,
		cube:     newCube(ps.Dates()[startRow:endRow+1], ps.Currencies(), p.Simulations, p.Horizon),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers())
	for row := startRow; row <= endRow; row++ {
		if gctx.Err() != nil {
			break
		}
		row := row
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return b.date(row)
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("simulation cube failed")
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.WithField("elapsed", time.Since(began).String()).Info("simulation cube ready")
	return b.cube, nil
}

type builder struct {
	params   Params
	series   *market.PriceSeries
	returns  *market.LogReturnSeries
	vols     *calib.VolSurface
	grid     []float64
	startRow int
	cube     *Cube
}

// date fills cube[row-startRow, :, :, :]. Goroutines write disjoint slices
// of the cube.
func (b *builder) date(row int) error {
	day := b.series.Date(row).Format(market.ISOLayout)

	from, to := calib.TrailingWindow(row, b.startRow)
	corr, err := calib.Correlation(b.returns, from, to)
	if err != nil {
		return fmt.Errorf("%s: %w", day, err)
	}

	src := rand.NewPCG(b.params.Seed, uint64(row))
	draws, err := CorrelatedNormals(corr, b.params.Simulations, b.params.Horizon, src)
	if err != nil {
		return fmt.Errorf("%s: %w", day, err)
	}

	d := row - b.startRow
	for c := range b.series.Currencies() {
		vol, err := b.vols.At(row, c)
		if err != nil {
			return fmt.Errorf("%s: %w", day, err)
		}
		if err := b.cube.setPaths(d, c, Path(b.series.Spot(row, c), vol, draws[c], b.grid)); err != nil {
			return err
		}
	}

	logrus.WithFields(logrus.Fields{"date": day, "returns": to - max(from, 1) + 1}).Debug("simulated valuation date")
	return nil
}
