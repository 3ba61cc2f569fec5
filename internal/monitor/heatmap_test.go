package monitor

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/synoptic.report/internal/density"
)

func testSurface(t *testing.T) *density.Result {
	t.Helper()
	rng := rand.New(rand.NewSource(21))
	pts := make([]density.Point, 300)
	for i := range pts {
		pts[i] = density.Point{X: rng.NormFloat64(), Y: rng.NormFloat64()}
	}
	res, err := density.Estimate(pts, density.Params{BaseResolution: 30})
	require.NoError(t, err)
	return res
}

func TestHeatmapPNGWritesFile(t *testing.T) {
	res := testSurface(t)
	path := filepath.Join(t.TempDir(), "surface.png")

	require.NoError(t, HeatmapPNG(res, "test surface", path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestHeatmapPNGNilResult(t *testing.T) {
	assert.Error(t, HeatmapPNG(nil, "x", "out.png"))
}

func TestRenderSurfaceHTML(t *testing.T) {
	res := testSurface(t)

	var buf bytes.Buffer
	require.NoError(t, RenderSurfaceHTML(&buf, "density", "window w1", res.XFlat, res.YFlat, res.DensityFlat))

	html := buf.String()
	assert.True(t, strings.Contains(html, "echarts"))
	assert.True(t, strings.Contains(html, "density"))
}

func TestRenderSurfaceHTMLDownsamples(t *testing.T) {
	n := 40000
	x := make([]float64, n)
	y := make([]float64, n)
	d := make([]float64, n)
	for i := range d {
		d[i] = float64(i % 7)
	}

	var buf bytes.Buffer
	require.NoError(t, RenderSurfaceHTML(&buf, "big", "", x, y, d))
	assert.Greater(t, buf.Len(), 0)
}
