// Package density implements histogram-based 2-D spatial density estimation
// for irregularly distributed point sets: dynamic resolution selection,
// distribution-preserving stratified subsampling, grid accumulation, Gaussian
// smoothing, and sampling-bias correction.
//
// The engine is pure and holds no state between calls. All randomness flows
// through an explicitly seeded source, so identical inputs produce identical
// surfaces.
package density

import (
	"errors"
	"fmt"
)

// Defaults for the estimation parameters.
const (
	// DefaultBaseResolution is the baseline grid edge length before tier scaling.
	DefaultBaseResolution = 100
	// DefaultSigma is the Gaussian smoothing width in grid cells.
	DefaultSigma = 1.5
	// DefaultSeed seeds the sampler when the caller does not supply one.
	DefaultSeed = 42
	// MinUsablePoints is the minimum point count below which estimation
	// reports insufficient data instead of a degenerate grid.
	MinUsablePoints = 10
)

// ErrInsufficientData reports fewer than MinUsablePoints usable points after
// filtering. It is a legitimate, retryable outcome, not a fault.
var ErrInsufficientData = errors.New("density: insufficient data")

// NumericError wraps an unexpected numeric failure during bounds derivation,
// gridding, or smoothing (malformed coordinates, internal panics). Callers
// should treat it as "no density computed this cycle".
type NumericError struct {
	Stage string
	Err   error
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("density: numeric failure in %s: %v", e.Stage, e.Err)
}

func (e *NumericError) Unwrap() error { return e.Err }

// Point is one record of a point set: a 2-D location plus caller metadata
// that rides along untouched. The engine never mutates the input slice; a
// sampled subset is a derived copy.
type Point struct {
	X      float64
	Y      float64
	ID     string  // optional caller identifier, passed through
	Weight float64 // optional caller weight, passed through
}

// Bounds is the rectangular coordinate range a density grid covers.
// Invariant: XMin < XMax and YMin < YMax.
type Bounds struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
}

// Valid reports whether the box spans a positive area. NaN bounds fail.
func (b Bounds) Valid() bool {
	return b.XMin < b.XMax && b.YMin < b.YMax
}

// Params configures one estimation call. The zero value selects all defaults.
type Params struct {
	// BaseResolution is the grid edge baseline; tier scaling per point count
	// is applied on top. Zero or negative means DefaultBaseResolution.
	BaseResolution int
	// Sigma is the Gaussian smoothing width in cells. Zero or negative means
	// DefaultSigma.
	Sigma float64
	// Bounds fixes the grid's coordinate range, for comparability across time
	// windows. Nil derives the box from the (sampled) data with 10% padding.
	Bounds *Bounds
	// Seed seeds the sampler's random source. Zero means DefaultSeed.
	Seed int64
}

// Result is a computed density surface. Density is indexed [iy][ix]; the
// flattened vectors are index-aligned with i = iy*Resolution + ix, so
// (XFlat[i], YFlat[i], DensityFlat[i]) is one cell-center triple.
type Result struct {
	Resolution     int     `json:"resolution"`
	Bounds         Bounds  `json:"bounds"`
	SampleFraction float64 `json:"sample_fraction"`
	InputCount     int     `json:"input_count"`
	SampledCount   int     `json:"sampled_count"`

	Density  [][]float64 `json:"density"`
	XCenters []float64   `json:"x_centers"`
	YCenters []float64   `json:"y_centers"`

	XFlat       []float64 `json:"x_flat"`
	YFlat       []float64 `json:"y_flat"`
	DensityFlat []float64 `json:"density_flat"`
}
