// Package risk values FX forwards against a simulation cube and derives
// their credit exposure profiles.
package risk

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/fxsim/market"
	"github.com/shopspring/decimal"
)

// Leg is one side of a forward: a notional amount paid or received in a
// currency at maturity.
type Leg struct {
	Notional decimal.Decimal
	Currency string
}

func (l Leg) String() string {
	return l.Notional.String() + " " + l.Currency
}

// Trade is an FX forward. It is a value type and never changes after
// NewTrade.
type Trade struct {
	ID       string
	Start    time.Time
	Maturity time.Time
	Receive  Leg
	Pay      Leg
}

// NewTrade validates the economics of a forward.
func NewTrade(id string, start, maturity time.Time, receive, pay Leg) (Trade, error) {
	receive.Currency = strings.ToUpper(strings.TrimSpace(receive.Currency))
	pay.Currency = strings.ToUpper(strings.TrimSpace(pay.Currency))

	if receive.Currency == "" || pay.Currency == "" {
		return Trade{}, fmt.Errorf("trade %s: both legs need a currency", id)
	}
	if receive.Notional.IsNegative() || pay.Notional.IsNegative() {
		return Trade{}, fmt.Errorf("trade %s: notionals must not be negative", id)
	}
	if !market.Day(maturity).After(market.Day(start)) {
		return Trade{}, fmt.Errorf("trade %s: maturity %s must be after start %s", id,
			maturity.Format(market.ISOLayout), start.Format(market.ISOLayout))
	}

	return Trade{
		ID:       id,
		Start:    market.Day(start),
		Maturity: market.Day(maturity),
		Receive:  receive,
		Pay:      pay,
	}, nil
}

func (t Trade) String() string {
	return fmt.Sprintf("%s: receive %s / pay %s, %s -> %s", t.ID, t.Receive, t.Pay,
		t.Start.Format(market.ISOLayout), t.Maturity.Format(market.ISOLayout))
}
