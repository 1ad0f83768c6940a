package cmd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/rustyeddy/fxsim/config"
	"github.com/rustyeddy/fxsim/market"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz/lzma"
)

// The commands share package level flags, so these tests do not run in
// parallel.

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writePrices(t *testing.T, path string) {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("DATE,EUR,USD,JPY\n")
	t0 := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 40; i++ {
		x := float64(i)
		fmt.Fprintf(&sb, "%s,%.6f,%.6f,%.4f\n", t0.AddDate(0, 0, i).Format("02/01/2006"),
			1.27*math.Exp(0.01*math.Sin(x)),
			1.53*math.Exp(0.01*math.Cos(1.7*x)),
			183.7*math.Exp(0.01*math.Sin(2.3*x+1)))
	}
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0644))
}

func writeConfig(t *testing.T, dir string) (string, *config.Config) {
	t.Helper()

	cfg := config.Default()
	cfg.Market.PricesFile = filepath.Join(dir, "prices.csv")
	cfg.Simulation.Start = "2015-01-21"
	cfg.Simulation.End = "2015-01-27"
	cfg.Simulation.Simulations = 20
	cfg.Simulation.Horizon = 10
	cfg.Trades[0].Start = "2015-01-21"
	cfg.Trades[0].Maturity = "2015-01-25"
	cfg.Journal = config.JournalConfig{Type: "sqlite", DBPath: filepath.Join(dir, "fxsim.db")}

	writePrices(t, cfg.Market.PricesFile)
	path := filepath.Join(dir, "fxsim.yaml")
	require.NoError(t, cfg.SaveToFile(path))
	return path, cfg
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "fxsim version "+version)
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fxsim.yaml")

	out, err := execute(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Created default configuration")

	out, err = execute(t, "config", "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Configuration valid")
	assert.Contains(t, out, "Trades: 1")
}

func TestConfigValidateInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("market:\n  prices_file: x.csv\n"), 0644))

	_, err := execute(t, "config", "validate", "-f", path)
	assert.ErrorContains(t, err, "validation failed")
}

func TestLogLevel(t *testing.T) {
	_, err := execute(t, "--log-level", "loud", "version")
	assert.ErrorContains(t, err, "log level")

	_, err = execute(t, "--log-level", "warn", "--log-json", "version")
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logrus.GetLevel())

	_, err = execute(t, "--log-level", "info", "--log-json=false", "version")
	require.NoError(t, err)
}

func TestCalibrate(t *testing.T) {
	path, _ := writeConfig(t, t.TempDir())

	out, err := execute(t, "calibrate", "-f", path, "--date", "2015-01-23")
	require.NoError(t, err)
	assert.Contains(t, out, "Calibration on 2015-01-23 (window 6 days)")
	assert.Contains(t, out, "EUR  spot")
	assert.Contains(t, out, "Correlation [EUR USD JPY]")

	_, err = execute(t, "calibrate", "-f", path, "--date", "2015-01-02")
	assert.ErrorContains(t, err, "before the simulation start")
}

func TestRunAndJournal(t *testing.T) {
	dir := t.TempDir()
	path, cfg := writeConfig(t, dir)

	out, err := execute(t, "run", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Trade FWD-EURUSD-1")
	assert.Contains(t, out, "Valuations:    4")
	assert.Contains(t, out, "Results saved to: "+cfg.Journal.DBPath)

	m := regexp.MustCompile(`Run ID:\s+(\S+)`).FindStringSubmatch(out)
	require.Len(t, m, 2)
	runID := m[1]

	out, err = execute(t, "journal", "valuations", runID, "-d", cfg.Journal.DBPath, "-t", "")
	require.NoError(t, err)
	assert.Contains(t, out, "4 valuations")
	assert.Contains(t, out, "2015-01-21")

	org := filepath.Join(dir, "run.org")
	out, err = execute(t, "journal", "run", runID, "-d", cfg.Journal.DBPath, "-o", org)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Wrote "+org)

	data, err := os.ReadFile(org)
	require.NoError(t, err)
	assert.Contains(t, string(data), ":RUN_ID:      "+runID)

	_, err = execute(t, "journal", "run", "missing", "-d", cfg.Journal.DBPath, "-o", "")
	assert.ErrorContains(t, err, "not found")
}

func dayArchive(t *testing.T, closes []uint32) []byte {
	t.Helper()

	var raw []byte
	for day, c := range closes {
		b := make([]byte, 24)
		binary.BigEndian.PutUint32(b[0:], uint32(day*86400))
		for off := 4; off < 20; off += 4 {
			binary.BigEndian.PutUint32(b[off:], c)
		}
		binary.BigEndian.PutUint32(b[20:], math.Float32bits(1))
		raw = append(raw, b...)
	}

	var buf bytes.Buffer
	w, err := lzma.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(raw)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDataDukas(t *testing.T) {
	eur := dayArchive(t, []uint32{80000, 79000, 78000})
	usd := dayArchive(t, []uint32{153000, 152000, 151000})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/EURGBP/2015/BID_candles_day_1.bi5":
			w.Write(eur)
		case "/GBPUSD/2015/BID_candles_day_1.bi5":
			w.Write(usd)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	path := filepath.Join(t.TempDir(), "prices.csv")
	out, err := execute(t, "data", "dukas",
		"--base-url", srv.URL,
		"--col", "EUR=EURGBP:invert", "--col", "USD=GBPUSD",
		"--from", "2015-01-01", "--to", "2015-01-03",
		"-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Wrote 3 dates of [EUR USD]")

	ps, err := market.LoadCSV(path, "")
	require.NoError(t, err)
	require.Equal(t, 3, ps.Len())
	assert.InDelta(t, 1.25, ps.Spot(0, 0), 1e-9)
	assert.InDelta(t, 1.51, ps.Spot(2, 1), 1e-9)
}
