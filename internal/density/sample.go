package density

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/banshee-data/synoptic.report/internal/monitoring"
)

// Stratification grid limits. The bin count adapts to the target sample size
// but stays within this band so tiny targets still spread across space and
// huge ones don't fragment into empty cells.
const (
	minStrataBins = 10
	maxStrataBins = 50
)

// StratifiedSample returns a subset of at most m points that approximates the
// spatial distribution of pts. Points are partitioned into a k×k grid over
// the full coordinate range and drawn proportionally from each occupied cell.
// If stratification cannot be built (degenerate or non-finite coordinate
// range), it degrades to a uniform random sample and logs the reason; the
// caller never sees that as an error.
//
// When m >= len(pts) the input slice is returned unchanged. The subset
// preserves input order, and with the same rng state the selection is
// deterministic.
func StratifiedSample(pts []Point, m int, rng *rand.Rand) []Point {
	if m >= len(pts) {
		return pts
	}
	out, err := stratify(pts, m, rng)
	if err != nil {
		monitoring.Logf("density: stratified sampling failed (%v); falling back to uniform sample of %d", err, m)
		return uniformSample(pts, m, rng)
	}
	return out
}

func stratify(pts []Point, m int, rng *rand.Rand) ([]Point, error) {
	k := int(math.Round(math.Sqrt(float64(m) / 10)))
	if k < minStrataBins {
		k = minStrataBins
	}
	if k > maxStrataBins {
		k = maxStrataBins
	}

	xMin, xMax := pts[0].X, pts[0].X
	yMin, yMax := pts[0].Y, pts[0].Y
	for _, p := range pts {
		if !isFinite(p.X) || !isFinite(p.Y) {
			return nil, fmt.Errorf("non-finite coordinate (%v, %v)", p.X, p.Y)
		}
		if p.X < xMin {
			xMin = p.X
		}
		if p.X > xMax {
			xMax = p.X
		}
		if p.Y < yMin {
			yMin = p.Y
		}
		if p.Y > yMax {
			yMax = p.Y
		}
	}
	if !(xMin < xMax) || !(yMin < yMax) {
		return nil, fmt.Errorf("degenerate coordinate range x=[%v,%v] y=[%v,%v]", xMin, xMax, yMin, yMax)
	}

	wx := (xMax - xMin) / float64(k)
	wy := (yMax - yMin) / float64(k)

	// Composite bin id bx*k + by. Indices into pts keep input order within
	// each bin.
	bins := make(map[int][]int)
	for i, p := range pts {
		bx := int((p.X - xMin) / wx)
		if bx >= k {
			bx = k - 1
		}
		by := int((p.Y - yMin) / wy)
		if by >= k {
			by = k - 1
		}
		id := bx*k + by
		bins[id] = append(bins[id], i)
	}

	// Iterate bins in id order so the draw sequence, and therefore the
	// selection, is reproducible for a given rng state.
	ids := make([]int, 0, len(bins))
	for id := range bins {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	n := len(pts)
	var selected []int
	for _, id := range ids {
		idxs := bins[id]
		c := len(idxs)
		s := int(math.Round(float64(c) / float64(n) * float64(m)))
		if s < 1 {
			s = 1
		}
		if c <= s {
			selected = append(selected, idxs...)
			continue
		}
		selected = append(selected, drawIndices(idxs, s, rng)...)
	}

	// Proportional rounding can overshoot; trim to exactly m.
	if len(selected) > m {
		selected = drawIndices(selected, m, rng)
	}
	sort.Ints(selected)

	out := make([]Point, len(selected))
	for i, idx := range selected {
		out[i] = pts[idx]
	}
	return out, nil
}

// uniformSample draws min(m, len(pts)) points uniformly at random without
// replacement, preserving input order.
func uniformSample(pts []Point, m int, rng *rand.Rand) []Point {
	if m >= len(pts) {
		return pts
	}
	perm := rng.Perm(len(pts))
	selected := make([]int, m)
	copy(selected, perm[:m])
	sort.Ints(selected)

	out := make([]Point, m)
	for i, idx := range selected {
		out[i] = pts[idx]
	}
	return out
}

// drawIndices draws s distinct values from idxs uniformly at random.
func drawIndices(idxs []int, s int, rng *rand.Rand) []int {
	perm := rng.Perm(len(idxs))
	out := make([]int, s)
	for i := 0; i < s; i++ {
		out[i] = idxs[perm[i]]
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
