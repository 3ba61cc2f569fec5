package density

import "math"

// resolutionTier maps a point-count band to a scaled grid edge. Tiers are
// evaluated first-match in order; upper == 0 marks the unbounded final tier.
type resolutionTier struct {
	upper   int     // exclusive upper bound on point count
	scale   float64 // multiplier applied to the base resolution
	capAt   int     // cap the scaled value when > 0
	floorAt int     // floor the scaled value when > 0
}

// Small point sets get finer grids (compute is cheap there); large sets get
// coarser grids to bound memory and latency.
var resolutionTiers = []resolutionTier{
	{upper: 100, scale: 2.0, capAt: 100},
	{upper: 500, scale: 1.5, capAt: 80},
	{upper: 2000, scale: 1.0},
	{upper: 10000, scale: 0.8, floorAt: 30},
	{upper: 50000, scale: 0.6, floorAt: 25},
	{scale: 0.4, floorAt: 20},
}

// SelectResolution returns the grid edge length for n points and the given
// base resolution. Zero or negative base means DefaultBaseResolution. The
// result is monotonically non-increasing in n and never below 20.
func SelectResolution(n, base int) int {
	if base <= 0 {
		base = DefaultBaseResolution
	}
	for _, t := range resolutionTiers {
		if t.upper != 0 && n >= t.upper {
			continue
		}
		r := int(math.Round(float64(base) * t.scale))
		if t.capAt > 0 && r > t.capAt {
			r = t.capAt
		}
		if t.floorAt > 0 && r < t.floorAt {
			r = t.floorAt
		}
		return r
	}
	return base
}

// sampleTier maps a point-count band to the fraction of points kept before
// gridding. Same first-match shape as resolutionTiers.
type sampleTier struct {
	upper    int // exclusive upper bound on point count
	fraction float64
}

var sampleTiers = []sampleTier{
	{upper: 1000, fraction: 1.0},
	{upper: 5000, fraction: 0.8},
	{upper: 20000, fraction: 0.5},
	{upper: 50000, fraction: 0.3},
	{upper: 100000, fraction: 0.2},
	{fraction: 0.1},
}

// SampleFraction returns the tiered fraction of points kept for n input
// points. Compute stays roughly proportional to a bounded budget: the kept
// count never exceeds ~20k points for any n.
func SampleFraction(n int) float64 {
	for _, t := range sampleTiers {
		if t.upper == 0 || n < t.upper {
			return t.fraction
		}
	}
	return 1.0
}
