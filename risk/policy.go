package risk

import "fmt"

// Policy is a set of counterparty credit limits checked against a
// valuation. A zero limit is not checked.
type Policy struct {
	// PFEPercentile is the percentile compared with MaxPFE, e.g. 98.
	PFEPercentile float64

	// MaxPFE caps the peak PFE over the remaining horizon, in base currency.
	MaxPFE float64

	// MaxEE caps the peak expected exposure, in base currency.
	MaxEE float64

	// MaxTenorDays caps the days left to maturity.
	MaxTenorDays int
}

func (p Policy) Validate() error {
	if p.PFEPercentile < 0 || p.PFEPercentile > 100 {
		return fmt.Errorf("pfe percentile must be between 0 and 100")
	}
	if p.MaxPFE < 0 || p.MaxEE < 0 || p.MaxTenorDays < 0 {
		return fmt.Errorf("limits must not be negative")
	}
	if p.MaxPFE > 0 && p.PFEPercentile == 0 {
		return fmt.Errorf("max pfe needs a pfe percentile")
	}
	return nil
}
