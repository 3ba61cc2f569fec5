package density

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// kernelTruncate bounds the Gaussian kernel at this many sigmas on each side.
const kernelTruncate = 4.0

// gaussianKernel returns a normalized 1-D Gaussian of width sigma, truncated
// at round(kernelTruncate*sigma) cells per side.
func gaussianKernel(sigma float64) []float64 {
	radius := int(kernelTruncate*sigma + 0.5)
	k := make([]float64, 2*radius+1)
	for i := range k {
		x := float64(i - radius)
		k[i] = math.Exp(-x * x / (2 * sigma * sigma))
	}
	floats.Scale(1/floats.Sum(k), k)
	return k
}

// gaussianSmooth applies isotropic Gaussian smoothing to grid with a
// zero-padded boundary, as two separable 1-D passes (rows, then columns).
// The kernel is non-negative, so cell values stay >= 0. sigma <= 0 returns
// an unsmoothed copy.
func gaussianSmooth(grid [][]float64, sigma float64) [][]float64 {
	rows := len(grid)
	if rows == 0 {
		return nil
	}
	cols := len(grid[0])

	out := make([][]float64, rows)
	if sigma <= 0 {
		for iy := range grid {
			out[iy] = make([]float64, cols)
			copy(out[iy], grid[iy])
		}
		return out
	}

	k := gaussianKernel(sigma)
	radius := len(k) / 2

	// Horizontal pass. Samples beyond an edge contribute zero.
	tmp := make([][]float64, rows)
	for iy := 0; iy < rows; iy++ {
		tmp[iy] = make([]float64, cols)
		for ix := 0; ix < cols; ix++ {
			var sum float64
			for t, w := range k {
				j := ix + t - radius
				if j < 0 || j >= cols {
					continue
				}
				sum += grid[iy][j] * w
			}
			tmp[iy][ix] = sum
		}
	}

	// Vertical pass.
	for iy := 0; iy < rows; iy++ {
		out[iy] = make([]float64, cols)
		for ix := 0; ix < cols; ix++ {
			var sum float64
			for t, w := range k {
				j := iy + t - radius
				if j < 0 || j >= rows {
					continue
				}
				sum += tmp[j][ix] * w
			}
			out[iy][ix] = sum
		}
	}
	return out
}
