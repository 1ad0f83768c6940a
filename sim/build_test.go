package sim

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/rustyeddy/fxsim/calib"
	"github.com/rustyeddy/fxsim/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)

func randomSeries(t *testing.T, rows int) *market.PriceSeries {
	t.Helper()

	r := rand.New(rand.NewPCG(7, 9))
	spot := []float64{1.27, 1.53, 183.7}
	dates := make([]time.Time, rows)
	prices := make([][]float64, rows)
	for i := range prices {
		dates[i] = t0.AddDate(0, 0, i)
		row := make([]float64, len(spot))
		for c := range spot {
			spot[c] *= math.Exp(0.006 * r.NormFloat64())
			row[c] = spot[c]
		}
		prices[i] = row
	}
	ps, err := market.NewPriceSeries(dates, []string{"EUR", "USD", "JPY"}, prices)
	require.NoError(t, err)
	return ps
}

func testParams() Params {
	return Params{
		Start:       t0.AddDate(0, 0, 20),
		End:         t0.AddDate(0, 0, 26),
		Simulations: 25,
		Horizon:     10,
		Seed:        42,
		Workers:     3,
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	ps := randomSeries(t, 40)
	p := testParams()

	cube, err := Build(context.Background(), ps, p)
	require.NoError(t, err)

	nd, nc, ns, nh := cube.Shape()
	assert.Equal(t, 7, nd)
	assert.Equal(t, 3, nc)
	assert.Equal(t, 25, ns)
	assert.Equal(t, 10, nh)
	assert.Equal(t, p.Start, cube.Start())
	assert.Equal(t, []string{"EUR", "USD", "JPY"}, cube.Currencies())

	vols, err := calib.Volatility(ps, p.Window())
	require.NoError(t, err)

	grid := TimeGrid(p.Horizon)
	for d := 0; d < nd; d++ {
		row := 20 + d
		for c := 0; c < nc; c++ {
			spot := ps.Spot(row, c)
			vol, err := vols.At(row, c)
			require.NoError(t, err)
			for i := 0; i < ns; i++ {
				assert.Equal(t, spot, cube.At(d, c, i, 0))
				// every point must sit on spot + sqrt(t)*vol*z for some draw
				z := (cube.At(d, c, i, 5) - spot) / (math.Sqrt(grid[5]) * vol)
				assert.False(t, math.IsNaN(z))
			}
		}
	}

	i, err := cube.DateIndex(t0.AddDate(0, 0, 23))
	require.NoError(t, err)
	assert.Equal(t, 3, i)

	_, err = cube.DateIndex(t0)
	assert.ErrorIs(t, err, market.ErrDateNotFound)

	jpy, ok := cube.CurrencyIndex("JPY")
	assert.True(t, ok)
	assert.Equal(t, 2, jpy)
	_, ok = cube.CurrencyIndex("GBP")
	assert.False(t, ok)
}

func TestBuild_DeterministicAcrossWorkers(t *testing.T) {
	t.Parallel()

	ps := randomSeries(t, 40)

	p1 := testParams()
	p1.Workers = 1
	p8 := testParams()
	p8.Workers = 8

	a, err := Build(context.Background(), ps, p1)
	require.NoError(t, err)
	b, err := Build(context.Background(), ps, p8)
	require.NoError(t, err)

	assert.Equal(t, a.data, b.data)

	p8.Seed = 43
	c, err := Build(context.Background(), ps, p8)
	require.NoError(t, err)
	assert.NotEqual(t, a.data, c.data)
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()

	ps := randomSeries(t, 40)

	t.Run("start not in series", func(t *testing.T) {
		t.Parallel()
		p := testParams()
		p.Start = t0.AddDate(0, 0, -3)
		_, err := Build(context.Background(), ps, p)
		assert.ErrorIs(t, err, market.ErrDateNotFound)
	})

	t.Run("end not in series", func(t *testing.T) {
		t.Parallel()
		p := testParams()
		p.End = t0.AddDate(0, 0, 100)
		_, err := Build(context.Background(), ps, p)
		assert.ErrorIs(t, err, market.ErrDateNotFound)
	})

	t.Run("window longer than history", func(t *testing.T) {
		t.Parallel()
		p := testParams()
		p.Start = t0.AddDate(0, 0, 2)
		_, err := Build(context.Background(), ps, p)
		assert.ErrorIs(t, err, calib.ErrInsufficientHistory)
	})

	t.Run("invalid params", func(t *testing.T) {
		t.Parallel()
		p := testParams()
		p.Simulations = 0
		_, err := Build(context.Background(), ps, p)
		assert.Error(t, err)
	})

	t.Run("cancelled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		cube, err := Build(ctx, ps, testParams())
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, cube)
	})
}

func TestBuild_PegAbortsRun(t *testing.T) {
	t.Parallel()

	// a pegged currency never moves, so its correlations are undefined
	src := randomSeries(t, 40)
	dates := src.Dates()
	rows := make([][]float64, len(dates))
	for i := range rows {
		rows[i] = []float64{src.Spot(i, 0), 7.8}
	}
	ps, err := market.NewPriceSeries(dates, []string{"EUR", "HKD"}, rows)
	require.NoError(t, err)

	cube, err := Build(context.Background(), ps, testParams())
	assert.ErrorIs(t, err, ErrNotPositiveDefinite)
	assert.Nil(t, cube)
}

func TestFromPaths(t *testing.T) {
	t.Parallel()

	dates := []time.Time{t0, t0.AddDate(0, 0, 1)}
	paths := [][][][]float64{
		{{{1, 2, 3}, {4, 5, 6}}},
		{{{7, 8, 9}, {10, 11, 12}}},
	}
	cube, err := FromPaths(dates, []string{"EUR"}, paths)
	require.NoError(t, err)

	assert.Equal(t, 11.0, cube.At(1, 0, 1, 1))
	assert.Equal(t, []float64{4, 5, 6}, cube.Path(0, 0, 1))

	_, err = FromPaths(dates, []string{"EUR"}, paths[:1])
	assert.Error(t, err)

	_, err = FromPaths([]time.Time{dates[1], dates[0]}, []string{"EUR"}, paths)
	assert.ErrorIs(t, err, market.ErrUnsortedDates)

	ragged := [][][][]float64{
		{{{1, 2, 3}, {4, 5, 6}}},
		{{{7, 8}, {10, 11, 12}}},
	}
	_, err = FromPaths(dates, []string{"EUR"}, ragged)
	assert.Error(t, err)
}
