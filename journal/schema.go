// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	dataset TEXT NOT NULL,
	base_currency TEXT NOT NULL,
	currencies TEXT NOT NULL,
	start_date DATETIME NOT NULL,
	end_date DATETIME NOT NULL,
	simulations INTEGER NOT NULL,
	horizon INTEGER NOT NULL,
	seed INTEGER NOT NULL,
	pay_leg TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS valuations (
	run_id TEXT NOT NULL,
	trade_id TEXT NOT NULL,
	batch_date DATETIME NOT NULL,
	days_to_maturity INTEGER NOT NULL,
	matured BOOLEAN NOT NULL,
	truncated BOOLEAN NOT NULL,
	mtm REAL NOT NULL,
	peak_ee REAL NOT NULL,
	peak_ee_day INTEGER NOT NULL,
	allowed BOOLEAN NOT NULL,
	violations TEXT NOT NULL,
	PRIMARY KEY (run_id, trade_id, batch_date)
);

CREATE TABLE IF NOT EXISTS profile (
	run_id TEXT NOT NULL,
	trade_id TEXT NOT NULL,
	batch_date DATETIME NOT NULL,
	day INTEGER NOT NULL,
	metric TEXT NOT NULL,
	percentile REAL NOT NULL,
	value REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_profile_trade ON profile(run_id, trade_id, batch_date);
`
