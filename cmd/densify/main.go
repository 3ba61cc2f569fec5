// Command densify runs the density engine over a JSON points file and writes
// the resulting surface as JSON, with an optional heatmap image. It is the
// offline counterpart of the POST /api/density endpoint.
//
// The input file holds an array of records with named numeric fields, e.g.
//
//	[{"id": "p1", "umap1": 0.12, "umap2": -3.4}, ...]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/synoptic.report/internal/density"
	"github.com/banshee-data/synoptic.report/internal/monitor"
)

var (
	inPath  = flag.String("in", "", "Input JSON file of point records (required)")
	outPath = flag.String("out", "", "Output JSON file for the density surface (default stdout)")
	pngPath = flag.String("png", "", "Optional heatmap image output path")
	xField  = flag.String("x", "umap1", "Name of the x coordinate field")
	yField  = flag.String("y", "umap2", "Name of the y coordinate field")
	base    = flag.Int("base", 100, "Base grid resolution")
	sigma   = flag.Float64("sigma", 1.5, "Gaussian smoothing width in cells")
	seed    = flag.Int64("seed", 42, "Sampler seed")
)

func main() {
	flag.Parse()

	if *inPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	points, skipped, err := loadPoints(*inPath, *xField, *yField)
	if err != nil {
		log.Fatalf("failed to load points: %v", err)
	}
	if skipped > 0 {
		log.Printf("skipped %d records missing numeric %q/%q fields", skipped, *xField, *yField)
	}

	result, err := density.Estimate(points, density.Params{
		BaseResolution: *base,
		Sigma:          *sigma,
		Seed:           *seed,
	})
	if err != nil {
		log.Fatalf("no density computed: %v", err)
	}
	log.Printf("estimated %dx%d surface from %d points (sampled %d, fraction %.2f)",
		result.Resolution, result.Resolution, result.InputCount, result.SampledCount, result.SampleFraction)

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatalf("failed to create output file: %v", err)
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalf("failed to write result: %v", err)
	}

	if *pngPath != "" {
		title := fmt.Sprintf("density (%d points)", result.InputCount)
		if err := monitor.HeatmapPNG(result, title, *pngPath); err != nil {
			log.Fatalf("failed to render heatmap: %v", err)
		}
		log.Printf("wrote heatmap to %s", *pngPath)
	}
}

func loadPoints(path, xField, yField string) ([]density.Point, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, 0, fmt.Errorf("parsing %s: %w", path, err)
	}

	points := make([]density.Point, 0, len(records))
	skipped := 0
	for _, rec := range records {
		x, xok := rec[xField].(float64)
		y, yok := rec[yField].(float64)
		if !xok || !yok {
			skipped++
			continue
		}
		p := density.Point{X: x, Y: y}
		if id, ok := rec["id"].(string); ok {
			p.ID = id
		}
		if weight, ok := rec["weight"].(float64); ok {
			p.Weight = weight
		}
		points = append(points, p)
	}
	return points, skipped, nil
}
