// Package runner drives a complete exposure run: it builds the simulation
// cube, values every trade on each of its live batch dates, checks the
// results against the credit policy and journals everything.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/fxsim/journal"
	"github.com/rustyeddy/fxsim/market"
	"github.com/rustyeddy/fxsim/pkg/id"
	"github.com/rustyeddy/fxsim/risk"
	"github.com/rustyeddy/fxsim/sim"
	"github.com/sirupsen/logrus"
)

// datesPerWorker bounds how many snapshots are held at once per worker.
const datesPerWorker = 4

// Runner values a set of trades against one simulation run.
type Runner struct {
	Series  *market.PriceSeries
	Dataset string // recorded with the run, usually the prices file

	Params      sim.Params
	Trades      []risk.Trade
	Options     risk.Options
	Policy      risk.Policy
	Percentiles []float64 // PFE percentiles journaled per batch date
	Workers     int       // exposure workers, <= 0 uses GOMAXPROCS

	Journal journal.Journal

	// Now stamps the run; time.Now when nil.
	Now func() time.Time
}

func (r *Runner) validate() error {
	if r.Series == nil {
		return fmt.Errorf("runner: Series is required")
	}
	if r.Journal == nil {
		return fmt.Errorf("runner: Journal is required")
	}
	if r.Options.BaseCurrency == "" {
		return fmt.Errorf("runner: base currency is required")
	}
	for _, p := range r.Percentiles {
		if p < 0 || p > 100 {
			return fmt.Errorf("runner: percentile %v outside [0,100]", p)
		}
	}
	return r.Policy.Validate()
}

// Run builds the cube and values every trade. The first error stops the run;
// anything already journaled stays journaled.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if err := r.validate(); err != nil {
		return Result{}, err
	}

	cube, err := sim.Build(ctx, r.Series, r.Params)
	if err != nil {
		return Result{}, fmt.Errorf("build cube: %w", err)
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	created := now().UTC()

	res := Result{
		RunID:        id.NewAt(created),
		Created:      created,
		BaseCurrency: r.Options.BaseCurrency,
		Currencies:   cube.Currencies(),
		Start:        r.Params.Start,
		End:          r.Params.End,
		Simulations:  r.Params.Simulations,
		Horizon:      r.Params.Horizon,
	}

	err = r.Journal.RecordRun(journal.RunRecord{
		RunID:        res.RunID,
		Created:      created,
		Dataset:      r.Dataset,
		BaseCurrency: r.Options.BaseCurrency,
		Currencies:   cube.Currencies(),
		Start:        r.Params.Start,
		End:          r.Params.End,
		Simulations:  r.Params.Simulations,
		Horizon:      r.Params.Horizon,
		Seed:         r.Params.Seed,
		PayLeg:       r.Options.PayLeg.String(),
	})
	if err != nil {
		return Result{}, fmt.Errorf("record run: %w", err)
	}

	for _, t := range r.Trades {
		tr, err := r.runTrade(ctx, res.RunID, t, cube)
		if err != nil {
			return Result{}, fmt.Errorf("trade %s: %w", t.ID, err)
		}
		res.Trades = append(res.Trades, tr)
	}
	return res, nil
}

func (r *Runner) runTrade(ctx context.Context, runID string, t risk.Trade, cube *sim.Cube) (TradeResult, error) {
	tr := TradeResult{TradeID: t.ID, PeakEEDay: -1}
	log := logrus.WithFields(logrus.Fields{"run": runID, "trade": t.ID})

	dates := risk.BatchDates(t, cube)
	if len(dates) == 0 {
		log.Warn("trade not live on any valuation date")
		return tr, nil
	}

	chunk := r.Workers
	if chunk <= 0 {
		chunk = 1
	}
	chunk *= datesPerWorker

	for from := 0; from < len(dates); from += chunk {
		to := min(from+chunk, len(dates))
		snaps, err := risk.Profile(ctx, t, cube, dates[from:to], r.Options, r.Workers)
		if err != nil {
			return TradeResult{}, err
		}
		for _, s := range snaps {
			if err := r.record(runID, s, &tr); err != nil {
				return TradeResult{}, err
			}
		}
	}

	log.WithFields(logrus.Fields{
		"valuations": tr.Valuations,
		"breaches":   tr.Breaches,
		"peak_ee":    tr.PeakEE,
	}).Info("trade valued")
	return tr, nil
}

func (r *Runner) record(runID string, s *risk.Snapshot, tr *TradeResult) error {
	d, err := risk.Evaluate(r.Policy, s)
	if err != nil {
		return err
	}

	mtm, err := s.MTM()
	if err != nil && !errors.Is(err, risk.ErrEmptyHorizon) {
		return err
	}

	codes := make([]string, len(d.Violations))
	for i, v := range d.Violations {
		codes[i] = v.Code
	}

	err = r.Journal.RecordValuation(journal.ValuationRecord{
		RunID:          runID,
		TradeID:        s.TradeID,
		BatchDate:      s.BatchDate,
		DaysToMaturity: s.DaysToMaturity,
		Matured:        s.Matured,
		Truncated:      s.Truncated,
		MTM:            mtm,
		PeakEE:         d.PeakEE,
		PeakEEDay:      d.PeakEEDay,
		Allowed:        d.Allowed,
		Violations:     strings.Join(codes, ","),
	})
	if err != nil {
		return fmt.Errorf("record valuation: %w", err)
	}

	points, err := r.profilePoints(runID, s)
	if err != nil {
		return err
	}
	if err := r.Journal.RecordProfile(points); err != nil {
		return fmt.Errorf("record profile: %w", err)
	}

	tr.add(s, mtm, d)
	return nil
}

func (r *Runner) profilePoints(runID string, s *risk.Snapshot) ([]journal.ProfilePoint, error) {
	point := func(day int, metric string, pct, v float64) journal.ProfilePoint {
		return journal.ProfilePoint{
			RunID:      runID,
			TradeID:    s.TradeID,
			BatchDate:  s.BatchDate,
			Day:        day,
			Metric:     metric,
			Percentile: pct,
			Value:      v,
		}
	}

	points := make([]journal.ProfilePoint, 0, s.Days()*(1+len(r.Percentiles)))
	for day, v := range s.EE() {
		points = append(points, point(day, journal.MetricEE, 0, v))
	}
	for _, p := range r.Percentiles {
		pfe, err := s.PFE(p)
		if err != nil {
			return nil, err
		}
		for day, v := range pfe {
			points = append(points, point(day, journal.MetricPFE, p, v))
		}
	}
	return points, nil
}
