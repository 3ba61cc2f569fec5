// Package monitor renders density surfaces for operators: static PNG
// heatmaps via gonum/plot and interactive HTML charts via go-echarts.
package monitor

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/synoptic.report/internal/density"
)

// surfaceGrid adapts a density result to plotter.GridXYZ.
type surfaceGrid struct {
	res *density.Result
}

func (g surfaceGrid) Dims() (c, r int) { return g.res.Resolution, g.res.Resolution }

func (g surfaceGrid) Z(c, r int) float64 { return g.res.Density[r][c] }

func (g surfaceGrid) X(c int) float64 { return g.res.XCenters[c] }

func (g surfaceGrid) Y(r int) float64 { return g.res.YCenters[r] }

// HeatmapPNG writes a heatmap of the density surface to path. The image
// format follows the file extension (.png, .pdf, .svg).
func HeatmapPNG(res *density.Result, title, path string) error {
	if res == nil || res.Resolution == 0 {
		return fmt.Errorf("no density surface to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	pal := moreland.SmoothBlueRed().Palette(255)
	hm := plotter.NewHeatMap(surfaceGrid{res: res}, pal)
	p.Add(hm)

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("saving heatmap to %s: %w", path, err)
	}
	return nil
}
