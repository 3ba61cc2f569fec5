package density

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/synoptic.report/internal/monitoring"
)

func init() {
	// Engine diagnostics are noise in test output.
	monitoring.SetLogger(nil)
}

// uniformPoints fills [0,side] × [0,side] uniformly at random.
func uniformPoints(n int, side float64, seed int64) []Point {
	rng := rand.New(rand.NewSource(seed))
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = Point{X: rng.Float64() * side, Y: rng.Float64() * side}
	}
	return pts
}

func TestEstimateInsufficientDataBoundary(t *testing.T) {
	t.Parallel()

	res, err := Estimate(uniformPoints(9, 10, 1), Params{})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInsufficientData)

	res, err = Estimate(uniformPoints(10, 10, 1), Params{})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 10, res.InputCount)
}

func TestEstimateFivePointsNoResult(t *testing.T) {
	t.Parallel()

	res, err := Estimate(uniformPoints(5, 10, 2), Params{})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestEstimateEndToEnd1200Points(t *testing.T) {
	t.Parallel()

	pts := uniformPoints(1200, 10, 3)
	res, err := Estimate(pts, Params{BaseResolution: 50, Sigma: 1.5})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, 50, res.Resolution, "tier 500<=n<2000 keeps the base resolution")
	assert.Equal(t, 0.8, res.SampleFraction, "tier 1000<=n<5000 keeps 80%")
	assert.LessOrEqual(t, res.SampledCount, 960)
	assert.Greater(t, res.SampledCount, 900)

	require.Len(t, res.Density, 50)
	for _, row := range res.Density {
		require.Len(t, row, 50)
		for _, v := range row {
			assert.GreaterOrEqual(t, v, 0.0)
		}
	}
	require.Len(t, res.DensityFlat, 2500)
	require.Len(t, res.XFlat, 2500)
	require.Len(t, res.YFlat, 2500)

	// The 1/p correction restores the full-population mass, modulo the small
	// amount of smoothing mass lost past the padded boundary.
	sum := floats.Sum(res.DensityFlat)
	want := float64(res.SampledCount) / res.SampleFraction
	assert.InDelta(t, want, sum, want*0.01)
	assert.InDelta(t, 1200, sum, 1200*0.05)
}

func TestEstimateIdempotent(t *testing.T) {
	t.Parallel()

	pts := uniformPoints(6000, 10, 4)
	a, err := Estimate(pts, Params{BaseResolution: 60})
	require.NoError(t, err)
	b, err := Estimate(pts, Params{BaseResolution: 60})
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(a, b), "identical inputs and seed must give identical grids")

	c, err := Estimate(pts, Params{BaseResolution: 60, Seed: 99})
	require.NoError(t, err)
	assert.NotEmpty(t, cmp.Diff(a.DensityFlat, c.DensityFlat), "a different seed samples differently")
}

func TestEstimateBiasCorrectionCellForCell(t *testing.T) {
	t.Parallel()

	pts := uniformPoints(1200, 10, 5)
	bounds := Bounds{XMin: -1, XMax: 11, YMin: -1, YMax: 11}

	corrected, err := Estimate(pts, Params{BaseResolution: 50, Bounds: &bounds})
	require.NoError(t, err)
	require.Equal(t, 0.8, corrected.SampleFraction)

	// Reproduce the engine's sampling, then estimate the subset directly:
	// 960 points fall in the no-sampling tier and the same resolution tier,
	// so its surface is the uncorrected one.
	rng := rand.New(rand.NewSource(DefaultSeed))
	sub := StratifiedSample(pts, int(float64(len(pts))*0.8), rng)
	uncorrected, err := Estimate(sub, Params{BaseResolution: 50, Bounds: &bounds})
	require.NoError(t, err)
	require.Equal(t, 1.0, uncorrected.SampleFraction)
	require.Equal(t, corrected.Resolution, uncorrected.Resolution)

	for i := range corrected.DensityFlat {
		assert.InDelta(t, uncorrected.DensityFlat[i]/0.8, corrected.DensityFlat[i], 1e-9)
	}
}

func TestEstimateCallerBounds(t *testing.T) {
	t.Parallel()

	pts := uniformPoints(200, 10, 6)
	bounds := Bounds{XMin: 0, XMax: 20, YMin: 0, YMax: 20}
	res, err := Estimate(pts, Params{Bounds: &bounds})
	require.NoError(t, err)

	assert.Equal(t, bounds, res.Bounds, "caller-supplied box is used verbatim")

	// With the box shifted away from the data, everything is dropped and the
	// call reports insufficient data instead of a degenerate grid.
	far := Bounds{XMin: 100, XMax: 200, YMin: 100, YMax: 200}
	out, err := Estimate(pts, Params{Bounds: &far})
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestEstimateInvalidCallerBounds(t *testing.T) {
	t.Parallel()

	pts := uniformPoints(100, 10, 7)
	bad := Bounds{XMin: 5, XMax: 5, YMin: 0, YMax: 10}
	res, err := Estimate(pts, Params{Bounds: &bad})
	assert.Nil(t, res)

	var numErr *NumericError
	assert.ErrorAs(t, err, &numErr)
}

func TestEstimateNaNCoordinates(t *testing.T) {
	t.Parallel()

	pts := uniformPoints(50, 10, 8)
	pts[13].Y = math.NaN()
	res, err := Estimate(pts, Params{})
	assert.Nil(t, res)

	var numErr *NumericError
	require.ErrorAs(t, err, &numErr)
	assert.Equal(t, "bounds", numErr.Stage)
}

func TestEstimateFlattenedAlignment(t *testing.T) {
	t.Parallel()

	pts := uniformPoints(300, 10, 9)
	res, err := Estimate(pts, Params{BaseResolution: 40})
	require.NoError(t, err)

	r := res.Resolution
	for iy := 0; iy < r; iy++ {
		for ix := 0; ix < r; ix++ {
			i := iy*r + ix
			assert.Equal(t, res.XCenters[ix], res.XFlat[i])
			assert.Equal(t, res.YCenters[iy], res.YFlat[i])
			assert.Equal(t, res.Density[iy][ix], res.DensityFlat[i])
		}
	}
}

func TestEstimateDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	pts := uniformPoints(3000, 10, 10)
	before := make([]Point, len(pts))
	copy(before, pts)

	_, err := Estimate(pts, Params{})
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(before, pts))
}
