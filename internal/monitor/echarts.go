package monitor

import (
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// maxChartPoints caps the number of cells embedded in an HTML chart to keep
// the payload small; denser surfaces are downsampled by stride.
const maxChartPoints = 8000

// viridisColors is the color ramp for the density visual map.
var viridisColors = []string{
	"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// RenderSurfaceHTML writes an interactive density chart to w: cell centers
// as a colored scatter, density mapped through the visual map. The flattened
// vectors must be index-aligned as produced by the engine.
func RenderSurfaceHTML(w io.Writer, title, subtitle string, xFlat, yFlat, densityFlat []float64) error {
	stride := 1
	if len(densityFlat) > maxChartPoints {
		stride = int(math.Ceil(float64(len(densityFlat)) / float64(maxChartPoints)))
	}

	data := make([]opts.ScatterData, 0, len(densityFlat)/stride+1)
	maxDensity := 0.0
	for i := 0; i < len(densityFlat); i += stride {
		v := densityFlat[i]
		if v > maxDensity {
			maxDensity = v
		}
		data = append(data, opts.ScatterData{Value: []interface{}{xFlat[i], yFlat[i], v}})
	}
	if maxDensity == 0 {
		maxDensity = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "y", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxDensity),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridisColors},
		}),
	)
	scatter.AddSeries("density", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	return scatter.Render(w)
}
