package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestTimeGrid(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []float64{0, 0.5}, TimeGrid(2))
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75}, TimeGrid(4))
	assert.Empty(t, TimeGrid(0))

	for _, v := range TimeGrid(365) {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestPath_ZeroVolIsFlat(t *testing.T) {
	t.Parallel()

	draws := [][]float64{{1.5, -2, 3, 0.7}, {-0.1, 4, -3, 9}}
	got := Path(1.3, 0, draws, TimeGrid(4))

	for _, row := range got {
		for _, v := range row {
			assert.Equal(t, 1.3, v)
		}
	}
}

func TestPath_DayZeroIsSpot(t *testing.T) {
	t.Parallel()

	draws := [][]float64{{2.5, 1}, {-3.1, 1}, {0.4, 1}}
	for _, vol := range []float64{0.01, 0.3, 5} {
		got := Path(0.72, vol, draws, []float64{0, 0.5})
		for i := range got {
			assert.Equal(t, 0.72, got[i][0])
		}
	}
}

func TestPath_EmptyHorizon(t *testing.T) {
	t.Parallel()

	got := Path(1.1, 0.2, [][]float64{{}, {}}, nil)
	require.Len(t, got, 2)
	for _, row := range got {
		assert.Empty(t, row)
	}
}

// Two currencies with identity correlation, vols 0.1 and 0.2, three
// simulations over a two day grid.
func TestPath_TwoCurrencyScenario(t *testing.T) {
	t.Parallel()

	supplied := []float64{
		0.3, -1.2, 0.8, // day 0, currency 0
		1.1, 0.0, -0.6, // day 0, currency 1
		0.5, -0.4, 1.9, // day 1, currency 0
		-1.5, 2.2, 0.7, // day 1, currency 1
	}
	k := 0
	l, err := Cholesky(mat.NewSymDense(2, []float64{1, 0, 0, 1}))
	require.NoError(t, err)
	draws := correlate(l, 3, 2, func() float64 { v := supplied[k]; k++; return v })

	spots := []float64{1.25, 1.55}
	vols := []float64{0.1, 0.2}
	grid := []float64{0, 0.5}

	for c := range spots {
		got := Path(spots[c], vols[c], draws[c], grid)
		require.Len(t, got, 3)
		for i := 0; i < 3; i++ {
			assert.Equal(t, spots[c], got[i][0])
			day1 := supplied[6+3*c+i]
			assert.InDelta(t, spots[c]+math.Sqrt(0.5)*vols[c]*day1, got[i][1], 1e-15)
		}
	}
}
