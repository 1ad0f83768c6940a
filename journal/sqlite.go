package journal

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	logrus.WithField("path", path).Debug("opened sqlite journal")
	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, created, dataset, base_currency, currencies, start_date, end_date, simulations, horizon, seed, pay_leg)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Dataset, r.BaseCurrency, strings.Join(r.Currencies, ","),
		r.Start, r.End, r.Simulations, r.Horizon, int64(r.Seed), r.PayLeg,
	)
	return err
}

func (j *SQLite) RecordValuation(v ValuationRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO valuations
		(run_id, trade_id, batch_date, days_to_maturity, matured, truncated, mtm, peak_ee, peak_ee_day, allowed, violations)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.RunID, v.TradeID, v.BatchDate, v.DaysToMaturity, v.Matured, v.Truncated,
		v.MTM, v.PeakEE, v.PeakEEDay, v.Allowed, v.Violations,
	)
	return err
}

// RecordProfile inserts the points in one transaction.
func (j *SQLite) RecordProfile(points []ProfilePoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO profile
		(run_id, trade_id, batch_date, day, metric, percentile, value)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.Exec(p.RunID, p.TradeID, p.BatchDate, p.Day, p.Metric, p.Percentile, p.Value); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert profile point: %w", err)
		}
	}
	return tx.Commit()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
