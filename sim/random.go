package sim

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrNotPositiveDefinite is returned when a correlation matrix has no
// Cholesky factorization. There is no fallback: substituting another matrix
// would drop the correlation structure.
var ErrNotPositiveDefinite = errors.New("correlation matrix is not positive-definite")

// Draws holds correlated standard normals indexed [currency][simulation][day].
type Draws [][][]float64

// Cholesky returns the lower-triangular L with L·Lᵗ = corr.
func Cholesky(corr mat.Symmetric) (*mat.TriDense, error) {
	n := corr.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if v := corr.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: entry (%d,%d) is %v", ErrNotPositiveDefinite, i, j, v)
			}
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(corr); !ok {
		return nil, ErrNotPositiveDefinite
	}
	var l mat.TriDense
	chol.LTo(&l)
	return &l, nil
}

// CorrelatedNormals factorizes corr and, for each of horizon days, draws an
// independent C×sims matrix Z of standard normals from src and keeps L·Z.
func CorrelatedNormals(corr mat.Symmetric, sims, horizon int, src rand.Source) (Draws, error) {
	if sims <= 0 {
		return nil, fmt.Errorf("simulations must be positive, got %d", sims)
	}
	if horizon < 0 {
		return nil, fmt.Errorf("horizon must not be negative, got %d", horizon)
	}

	l, err := Cholesky(corr)
	if err != nil {
		return nil, err
	}
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	return correlate(l, sims, horizon, norm.Rand), nil
}

func correlate(l mat.Matrix, sims, horizon int, next func() float64) Draws {
	c, _ := l.Dims()

	out := make(Draws, c)
	for i := range out {
		out[i] = make([][]float64, sims)
		for j := range out[i] {
			out[i][j] = make([]float64, horizon)
		}
	}

	z := mat.NewDense(c, sims, nil)
	var x mat.Dense
	for h := 0; h < horizon; h++ {
		for i := 0; i < c; i++ {
			for j := 0; j < sims; j++ {
				z.Set(i, j, next())
			}
		}
		x.Mul(l, z)
		for i := 0; i < c; i++ {
			for j := 0; j < sims; j++ {
				out[i][j][h] = x.At(i, j)
			}
		}
	}
	return out
}
