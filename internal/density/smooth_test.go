package density

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonum.org/v1/gonum/floats"
)

func TestGaussianKernelNormalized(t *testing.T) {
	t.Parallel()

	for _, sigma := range []float64{0.5, 1.0, 1.5, 3.0} {
		k := gaussianKernel(sigma)
		assert.InDelta(t, 1.0, floats.Sum(k), 1e-12, "sigma=%v", sigma)
		assert.Equal(t, 2*int(4*sigma+0.5)+1, len(k), "sigma=%v", sigma)
		// Symmetric and peaked at the centre.
		mid := len(k) / 2
		for i := 0; i <= mid; i++ {
			assert.InDelta(t, k[i], k[len(k)-1-i], 1e-15)
			assert.LessOrEqual(t, k[i], k[mid])
		}
	}
}

func TestGaussianSmoothConservesInteriorMass(t *testing.T) {
	t.Parallel()

	// A unit impulse far from every edge spreads but keeps its total mass.
	grid := make([][]float64, 31)
	for iy := range grid {
		grid[iy] = make([]float64, 31)
	}
	grid[15][15] = 1

	out := gaussianSmooth(grid, 1.5)
	var sum float64
	for _, row := range out {
		sum += floats.Sum(row)
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Less(t, out[15][15], 1.0, "impulse must spread")
	assert.Greater(t, out[15][15], out[15][10])
}

func TestGaussianSmoothZeroPaddingLeaksAtEdges(t *testing.T) {
	t.Parallel()

	grid := make([][]float64, 9)
	for iy := range grid {
		grid[iy] = make([]float64, 9)
	}
	grid[0][0] = 1

	out := gaussianSmooth(grid, 1.5)
	var sum float64
	for _, row := range out {
		sum += floats.Sum(row)
	}
	// Mass beyond the boundary is lost with a constant (zero) boundary.
	assert.Less(t, sum, 1.0)
	for _, row := range out {
		for _, v := range row {
			assert.GreaterOrEqual(t, v, 0.0, "non-negative kernel keeps cells non-negative")
		}
	}
}

func TestGaussianSmoothNonPositiveSigmaCopies(t *testing.T) {
	t.Parallel()

	grid := [][]float64{{1, 2}, {3, 4}}
	out := gaussianSmooth(grid, 0)
	require.Equal(t, grid, out)

	out[0][0] = 99
	assert.Equal(t, 1.0, grid[0][0], "result must be a copy, not an alias")
}
