package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/rustyeddy/fxsim/market"
)

// CSVJournal writes valuations and profile points to two CSV files. Run
// metadata is not written; rows carry the run id.
type CSVJournal struct {
	valuations *csv.Writer
	profile    *csv.Writer
	vf, pf     *os.File
	runID      string
}

var (
	valuationHeader = []string{"run_id", "trade_id", "batch_date", "days_to_maturity", "matured", "truncated", "mtm", "peak_ee", "peak_ee_day", "allowed", "violations"}
	profileHeader   = []string{"run_id", "trade_id", "batch_date", "day", "metric", "percentile", "value"}
)

func NewCSV(valuationsPath, profilePath string) (*CSVJournal, error) {
	vf, err := os.Create(valuationsPath)
	if err != nil {
		return nil, err
	}
	pf, err := os.Create(profilePath)
	if err != nil {
		vf.Close()
		return nil, err
	}

	vw := csv.NewWriter(vf)
	pw := csv.NewWriter(pf)

	if err := vw.Write(valuationHeader); err != nil {
		return nil, err
	}
	if err := pw.Write(profileHeader); err != nil {
		return nil, err
	}

	vw.Flush()
	if err := vw.Error(); err != nil {
		return nil, err
	}
	pw.Flush()
	if err := pw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{valuations: vw, profile: pw, vf: vf, pf: pf}, nil
}

func (j *CSVJournal) RecordRun(r RunRecord) error {
	if r.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	j.runID = r.RunID
	return nil
}

func (j *CSVJournal) RecordValuation(v ValuationRecord) error {
	err := j.valuations.Write([]string{
		v.RunID,
		v.TradeID,
		v.BatchDate.Format(market.ISOLayout),
		strconv.Itoa(v.DaysToMaturity),
		strconv.FormatBool(v.Matured),
		strconv.FormatBool(v.Truncated),
		f(v.MTM),
		f(v.PeakEE),
		strconv.Itoa(v.PeakEEDay),
		strconv.FormatBool(v.Allowed),
		v.Violations,
	})
	if err != nil {
		return err
	}

	j.valuations.Flush()
	return j.valuations.Error()
}

func (j *CSVJournal) RecordProfile(points []ProfilePoint) error {
	for _, p := range points {
		err := j.profile.Write([]string{
			p.RunID,
			p.TradeID,
			p.BatchDate.Format(market.ISOLayout),
			strconv.Itoa(p.Day),
			p.Metric,
			strconv.FormatFloat(p.Percentile, 'f', -1, 64),
			f(p.Value),
		})
		if err != nil {
			return err
		}
	}

	j.profile.Flush()
	return j.profile.Error()
}

func (j *CSVJournal) Close() error {
	j.valuations.Flush()
	if err := j.valuations.Error(); err != nil {
		return err
	}
	j.profile.Flush()
	if err := j.profile.Error(); err != nil {
		return err
	}

	if err := j.vf.Close(); err != nil {
		return err
	}
	if err := j.pf.Close(); err != nil {
		return err
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
