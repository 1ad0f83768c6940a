package journal

import "time"

var batch = time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC)

func testRun() RunRecord {
	return RunRecord{
		RunID:        "01HRUN",
		Created:      time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		Dataset:      "testdata/prices.csv",
		BaseCurrency: "GBP",
		Currencies:   []string{"EUR", "USD"},
		Start:        time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2015, 12, 31, 0, 0, 0, 0, time.UTC),
		Simulations:  1000,
		Horizon:      365,
		Seed:         42,
		PayLeg:       "path",
	}
}

func testValuation(trade string, d time.Time, allowed bool) ValuationRecord {
	v := ValuationRecord{
		RunID:          "01HRUN",
		TradeID:        trade,
		BatchDate:      d,
		DaysToMaturity: 215,
		MTM:            -12.345,
		PeakEE:         40.5,
		PeakEEDay:      200,
		Allowed:        allowed,
	}
	if !allowed {
		v.Violations = "EE_LIMIT"
	}
	return v
}
