package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// GetRun returns a single run record by ID.
func (j *SQLite) GetRun(runID string) (RunRecord, error) {
	var (
		rec        RunRecord
		currencies string
		seed       int64
	)

	row := j.db.QueryRow(`
		SELECT run_id, created, dataset, base_currency, currencies, start_date, end_date, simulations, horizon, seed, pay_leg
		FROM runs
		WHERE run_id = ?`, runID)

	err := row.Scan(
		&rec.RunID,
		&rec.Created,
		&rec.Dataset,
		&rec.BaseCurrency,
		&currencies,
		&rec.Start,
		&rec.End,
		&rec.Simulations,
		&rec.Horizon,
		&seed,
		&rec.PayLeg,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, fmt.Errorf("run %q not found", runID)
		}
		return RunRecord{}, err
	}
	if currencies != "" {
		rec.Currencies = strings.Split(currencies, ",")
	}
	rec.Seed = uint64(seed)
	return rec, nil
}

// ListValuations returns the valuations of a run ordered by trade and batch
// date. An empty tradeID selects every trade.
func (j *SQLite) ListValuations(runID, tradeID string) ([]ValuationRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, trade_id, batch_date, days_to_maturity, matured, truncated, mtm, peak_ee, peak_ee_day, allowed, violations
		FROM valuations
		WHERE run_id = ? AND (? = '' OR trade_id = ?)
		ORDER BY trade_id ASC, batch_date ASC`, runID, tradeID, tradeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ValuationRecord
	for rows.Next() {
		var rec ValuationRecord
		if err := rows.Scan(
			&rec.RunID,
			&rec.TradeID,
			&rec.BatchDate,
			&rec.DaysToMaturity,
			&rec.Matured,
			&rec.Truncated,
			&rec.MTM,
			&rec.PeakEE,
			&rec.PeakEEDay,
			&rec.Allowed,
			&rec.Violations,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListProfile returns the profile points of one trade on one batch date,
// ordered by metric, percentile and day.
func (j *SQLite) ListProfile(runID, tradeID string, batch time.Time) ([]ProfilePoint, error) {
	rows, err := j.db.Query(`
		SELECT run_id, trade_id, batch_date, day, metric, percentile, value
		FROM profile
		WHERE run_id = ? AND trade_id = ? AND batch_date = ?
		ORDER BY metric ASC, percentile ASC, day ASC`, runID, tradeID, batch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProfilePoint
	for rows.Next() {
		var p ProfilePoint
		if err := rows.Scan(
			&p.RunID,
			&p.TradeID,
			&p.BatchDate,
			&p.Day,
			&p.Metric,
			&p.Percentile,
			&p.Value,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
