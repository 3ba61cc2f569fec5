package density

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/synoptic.report/internal/monitoring"
)

// Estimate computes a smoothed density surface for points.
//
// Pipeline: select a tiered grid resolution for the input size, subsample
// large inputs with the stratified spatial sampler, accumulate the (possibly
// sampled) points into a raw histogram over the bounding box, smooth with an
// isotropic Gaussian, and rescale by 1/fraction to estimate full-population
// density. The rescale is a first-order correction that assumes the
// stratified sample's spatial distribution matches the population; that is
// an approximation suited to visualization, not a statistically rigorous
// estimator.
//
// Failure modes are absorbed, never raised as faults: fewer than
// MinUsablePoints usable points returns ErrInsufficientData, and malformed
// coordinates or any internal panic return a *NumericError. Both are
// warning-logged and retryable.
func Estimate(points []Point, p Params) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &NumericError{Stage: "estimate", Err: fmt.Errorf("panic: %v", r)}
			monitoring.Logf("density: %v", err)
		}
	}()

	n := len(points)
	if n < MinUsablePoints {
		monitoring.Logf("density: insufficient data: %d points (minimum %d)", n, MinUsablePoints)
		return nil, ErrInsufficientData
	}

	base := p.BaseResolution
	if base <= 0 {
		base = DefaultBaseResolution
	}
	sigma := p.Sigma
	if sigma <= 0 {
		sigma = DefaultSigma
	}
	seed := p.Seed
	if seed == 0 {
		seed = DefaultSeed
	}
	rng := rand.New(rand.NewSource(seed))

	resolution := SelectResolution(n, base)
	fraction := SampleFraction(n)

	sampled := points
	if fraction < 1 {
		target := int(float64(n) * fraction)
		sampled = StratifiedSample(points, target, rng)
	}

	var b Bounds
	if p.Bounds != nil {
		b = *p.Bounds
		if !b.Valid() {
			e := &NumericError{Stage: "bounds", Err: fmt.Errorf("invalid caller bounds %+v", b)}
			monitoring.Logf("density: %v", e)
			return nil, e
		}
	} else {
		derived, derr := deriveBounds(sampled)
		if derr != nil {
			e := &NumericError{Stage: "bounds", Err: derr}
			monitoring.Logf("density: %v", e)
			return nil, e
		}
		b = derived
	}

	hist, kept := rasterize(sampled, b, resolution)
	if kept < MinUsablePoints {
		monitoring.Logf("density: insufficient data: %d points inside bounds (minimum %d)", kept, MinUsablePoints)
		return nil, ErrInsufficientData
	}

	grid := gaussianSmooth(hist, sigma)
	if fraction < 1 {
		for iy := range grid {
			floats.Scale(1/fraction, grid[iy])
		}
	}

	xc := cellCenters(b.XMin, b.XMax, resolution)
	yc := cellCenters(b.YMin, b.YMax, resolution)

	cells := resolution * resolution
	r := &Result{
		Resolution:     resolution,
		Bounds:         b,
		SampleFraction: fraction,
		InputCount:     n,
		SampledCount:   len(sampled),
		Density:        grid,
		XCenters:       xc,
		YCenters:       yc,
		XFlat:          make([]float64, 0, cells),
		YFlat:          make([]float64, 0, cells),
		DensityFlat:    make([]float64, 0, cells),
	}
	for iy := 0; iy < resolution; iy++ {
		for ix := 0; ix < resolution; ix++ {
			r.XFlat = append(r.XFlat, xc[ix])
			r.YFlat = append(r.YFlat, yc[iy])
			r.DensityFlat = append(r.DensityFlat, grid[iy][ix])
		}
	}
	return r, nil
}
