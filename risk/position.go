package risk

import (
	"time"

	"github.com/rustyeddy/fxsim/sim"
)

// Position holds a trade and its most recent valuation. It starts unvalued
// and can be revalued on any batch date any number of times; each success
// replaces the previous snapshot and a failure leaves it untouched.
//
// A Position is not safe for concurrent use. Value is the pure equivalent.
type Position struct {
	trade Trade
	opts  Options
	last  *Snapshot
}

func NewPosition(t Trade, opts Options) *Position {
	return &Position{trade: t, opts: opts}
}

func (p *Position) Trade() Trade { return p.trade }

// ValueAt revalues the trade on batch against cube.
func (p *Position) ValueAt(batch time.Time, cube *sim.Cube) error {
	snap, err := Value(p.trade, batch, cube, p.opts)
	if err != nil {
		return err
	}
	p.last = snap
	return nil
}

// Snapshot returns the latest valuation.
func (p *Position) Snapshot() (*Snapshot, error) {
	if p.last == nil {
		return nil, ErrUnvaluedTrade
	}
	return p.last, nil
}

func (p *Position) MTM() (float64, error) {
	s, err := p.Snapshot()
	if err != nil {
		return 0, err
	}
	return s.MTM()
}

func (p *Position) EE() ([]float64, error) {
	s, err := p.Snapshot()
	if err != nil {
		return nil, err
	}
	return s.EE(), nil
}

func (p *Position) PFE(pct float64) ([]float64, error) {
	s, err := p.Snapshot()
	if err != nil {
		return nil, err
	}
	return s.PFE(pct)
}
