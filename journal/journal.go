// journal/journal.go
package journal

import "time"

// RunRecord describes one simulation run.
type RunRecord struct {
	RunID        string
	Created      time.Time
	Dataset      string
	BaseCurrency string
	Currencies   []string
	Start        time.Time
	End          time.Time
	Simulations  int
	Horizon      int
	Seed         uint64
	PayLeg       string // pay leg conversion, "path" or "spot"
}

// ValuationRecord is the headline result of valuing one trade on one batch date.
type ValuationRecord struct {
	RunID          string
	TradeID        string
	BatchDate      time.Time
	DaysToMaturity int
	Matured        bool
	Truncated      bool
	MTM            float64
	PeakEE         float64
	PeakEEDay      int
	Allowed        bool   // within credit limits
	Violations     string // violation codes, comma separated
}

// Exposure profile metrics.
const (
	MetricEE  = "EE"
	MetricPFE = "PFE"
)

// ProfilePoint is one day of an EE or PFE profile.
type ProfilePoint struct {
	RunID      string
	TradeID    string
	BatchDate  time.Time
	Day        int
	Metric     string
	Percentile float64 // PFE only
	Value      float64
}

type Journal interface {
	RecordRun(RunRecord) error
	RecordValuation(ValuationRecord) error
	RecordProfile([]ProfilePoint) error
	Close() error
}
