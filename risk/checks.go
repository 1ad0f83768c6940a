package risk

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

type Violation struct {
	Code string
	Msg  string
}

// Decision is the outcome of checking one valuation against a Policy.
type Decision struct {
	Allowed    bool
	Violations []Violation

	PeakEE     float64
	PeakEEDay  int
	PeakPFE    float64
	PeakPFEDay int
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Evaluate checks a valuation against the policy limits.
func Evaluate(p Policy, s *Snapshot) (Decision, error) {
	if err := p.Validate(); err != nil {
		return Decision{}, err
	}

	d := Decision{Allowed: true, PeakEEDay: -1, PeakPFEDay: -1}
	if s.Matured || s.Days() == 0 {
		return d, nil
	}

	d.PeakEE, d.PeakEEDay = s.PeakEE()
	if p.MaxEE > 0 && d.PeakEE > p.MaxEE {
		d.add("EE_LIMIT",
			fmt.Sprintf("peak EE %.2f on day %d exceeds limit %.2f", d.PeakEE, d.PeakEEDay, p.MaxEE))
	}

	if p.PFEPercentile > 0 {
		pfe, err := s.PFE(p.PFEPercentile)
		if err != nil {
			return Decision{}, err
		}
		d.PeakPFEDay = floats.MaxIdx(pfe)
		d.PeakPFE = pfe[d.PeakPFEDay]
		if p.MaxPFE > 0 && d.PeakPFE > p.MaxPFE {
			d.add("PFE_LIMIT",
				fmt.Sprintf("peak PFE(%g) %.2f on day %d exceeds limit %.2f",
					p.PFEPercentile, d.PeakPFE, d.PeakPFEDay, p.MaxPFE))
		}
	}

	if p.MaxTenorDays > 0 && s.DaysToMaturity > p.MaxTenorDays {
		d.add("TENOR_LIMIT",
			fmt.Sprintf("%d days to maturity exceeds limit %d", s.DaysToMaturity, p.MaxTenorDays))
	}

	return d, nil
}
