package sim

import "math"

// TimeGrid returns the normalized time of each simulated day,
// time[j] = j/horizon, so time[0] is 0 and every value is in [0,1).
func TimeGrid(horizon int) []float64 {
	grid := make([]float64, horizon)
	for j := range grid {
		grid[j] = float64(j) / float64(horizon)
	}
	return grid
}

// Path simulates one currency:
//
//	sim[i][j] = spot + sqrt(time[j]) * vol * draws[i][j]
//
// The diffusion is additive with no drift and no rate differential. It
// understates short horizon risk; that is a known property of the model and
// is kept as is. draws must have at least len(grid) days per simulation.
func Path(spot, vol float64, draws [][]float64, grid []float64) [][]float64 {
	out := make([][]float64, len(draws))
	for i, row := range draws {
		out[i] = make([]float64, len(grid))
		for j, t := range grid {
			out[i][j] = spot + math.Sqrt(t)*vol*row[j]
		}
	}
	return out
}
