package density

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// boundsPadding is the margin added on each axis when the box is derived
// from data, as a fraction of the axis span.
const boundsPadding = 0.1

// deriveBounds computes the padded bounding box of pts. A zero-span axis
// (all points sharing one coordinate) is widened by 1.0 on each side so the
// box invariant min < max always holds.
func deriveBounds(pts []Point) (Bounds, error) {
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		if !isFinite(p.X) || !isFinite(p.Y) {
			return Bounds{}, fmt.Errorf("non-finite coordinate at index %d: (%v, %v)", i, p.X, p.Y)
		}
		xs[i] = p.X
		ys[i] = p.Y
	}

	b := Bounds{
		XMin: floats.Min(xs),
		XMax: floats.Max(xs),
		YMin: floats.Min(ys),
		YMax: floats.Max(ys),
	}

	if pad := (b.XMax - b.XMin) * boundsPadding; pad > 0 {
		b.XMin -= pad
		b.XMax += pad
	} else {
		b.XMin--
		b.XMax++
	}
	if pad := (b.YMax - b.YMin) * boundsPadding; pad > 0 {
		b.YMin -= pad
		b.YMax += pad
	} else {
		b.YMin--
		b.YMax++
	}

	if !b.Valid() {
		return Bounds{}, fmt.Errorf("derived invalid bounds %+v", b)
	}
	return b, nil
}

// rasterize bins pts into a res×res occupancy histogram over b, indexed
// [iy][ix] with equal-width cells. Points outside the box (possible only
// with a caller-supplied box, or non-finite coordinates) are dropped, not
// clipped; the returned count is the number of points actually binned. A
// point exactly on the max edge of an axis lands in the last cell.
func rasterize(pts []Point, b Bounds, res int) ([][]float64, int) {
	hist := make([][]float64, res)
	for iy := range hist {
		hist[iy] = make([]float64, res)
	}

	wx := (b.XMax - b.XMin) / float64(res)
	wy := (b.YMax - b.YMin) / float64(res)

	kept := 0
	for _, p := range pts {
		if !(p.X >= b.XMin && p.X <= b.XMax && p.Y >= b.YMin && p.Y <= b.YMax) {
			continue
		}
		ix := int((p.X - b.XMin) / wx)
		if ix >= res {
			ix = res - 1
		}
		iy := int((p.Y - b.YMin) / wy)
		if iy >= res {
			iy = res - 1
		}
		hist[iy][ix]++
		kept++
	}
	return hist, kept
}

// cellCenters returns the res cell-center coordinates of equal-width bins
// spanning [min, max].
func cellCenters(min, max float64, res int) []float64 {
	w := (max - min) / float64(res)
	centers := make([]float64, res)
	for i := range centers {
		centers[i] = min + (float64(i)+0.5)*w
	}
	return centers
}
