// Package api exposes the density engine and the grid store over HTTP.
// Routes are mounted under /api by the service binary.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/banshee-data/synoptic.report/internal/config"
	"github.com/banshee-data/synoptic.report/internal/density"
	"github.com/banshee-data/synoptic.report/internal/gridstore"
	"github.com/banshee-data/synoptic.report/internal/monitor"
	"github.com/banshee-data/synoptic.report/internal/monitoring"
	"github.com/banshee-data/synoptic.report/internal/version"
)

// Server handles density estimation requests and serves stored grids.
type Server struct {
	cfg   *config.TuningConfig
	store *gridstore.GridStore
}

// NewServer creates an API server. store may be nil, which disables
// persistence endpoints but leaves estimation available.
func NewServer(cfg *config.TuningConfig, store *gridstore.GridStore) *Server {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	return &Server{cfg: cfg, store: store}
}

// ServeMux returns the API routes.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/density", s.handleEstimate)
	mux.HandleFunc("/grids", s.handleListGrids)
	mux.HandleFunc("/grids/", s.handleGrid)
	mux.HandleFunc("/health", s.HandleHealth)
	return mux
}

// estimateRequest is the body of POST /density. Points are JSON objects with
// named numeric fields; XField/YField select the two coordinates, defaulting
// to the configured field names. Optional "id" and "weight" fields ride
// along into the engine untouched.
type estimateRequest struct {
	Points         []map[string]interface{} `json:"points"`
	XField         string                   `json:"x_field,omitempty"`
	YField         string                   `json:"y_field,omitempty"`
	BaseResolution int                      `json:"base_resolution,omitempty"`
	Sigma          float64                  `json:"sigma,omitempty"`
	Bounds         *density.Bounds          `json:"bounds,omitempty"`
	Window         string                   `json:"window,omitempty"`
	Store          bool                     `json:"store,omitempty"`
}

type estimateResponse struct {
	Status        string          `json:"status"`
	GridID        string          `json:"grid_id,omitempty"`
	SkippedPoints int             `json:"skipped_points,omitempty"`
	Result        *density.Result `json:"result,omitempty"`
	Error         string          `json:"error,omitempty"`
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	xField := req.XField
	if xField == "" {
		xField = s.cfg.GetXField()
	}
	yField := req.YField
	if yField == "" {
		yField = s.cfg.GetYField()
	}

	points, skipped := selectPoints(req.Points, xField, yField)
	if skipped > 0 {
		monitoring.Logf("api: skipped %d of %d records missing numeric %q/%q fields",
			skipped, len(req.Points), xField, yField)
	}

	params := density.Params{
		BaseResolution: req.BaseResolution,
		Sigma:          req.Sigma,
		Bounds:         req.Bounds,
		Seed:           s.cfg.GetSamplerSeed(),
	}
	if params.BaseResolution == 0 {
		params.BaseResolution = s.cfg.GetBaseResolution()
	}
	if params.Sigma == 0 {
		params.Sigma = s.cfg.GetSigma()
	}

	result, err := density.Estimate(points, params)
	if err != nil {
		// Engine failures are legitimate, retryable no-result outcomes, not
		// server faults.
		resp := estimateResponse{SkippedPoints: skipped, Error: err.Error()}
		var numErr *density.NumericError
		switch {
		case errors.Is(err, density.ErrInsufficientData):
			resp.Status = "insufficient_data"
		case errors.As(err, &numErr):
			resp.Status = "no_result"
		default:
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	resp := estimateResponse{Status: "ok", SkippedPoints: skipped, Result: result}
	if req.Store && s.store != nil {
		rec, err := gridstore.RecordFromResult(result, req.Window)
		if err == nil {
			err = s.store.Insert(rec)
		}
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("storing grid: %v", err))
			return
		}
		resp.GridID = rec.ID
		if keep := s.cfg.GetGridRetention(); keep > 0 {
			if _, err := s.store.Prune(keep); err != nil {
				monitoring.Logf("api: pruning grids: %v", err)
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// selectPoints maps raw JSON records to engine points using the named
// coordinate fields. Records without both numeric fields are skipped and
// counted; coordinate validity beyond presence is the engine's concern.
func selectPoints(records []map[string]interface{}, xField, yField string) ([]density.Point, int) {
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
	return points, skipped
}

func (s *Server) handleListGrids(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.store == nil {
		writeJSONError(w, http.StatusNotFound, "grid store not configured")
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 1000 {
			limit = v
		}
	}

	records, err := s.store.List(limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("listing grids: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"grids": records,
		"count": len(records),
	})
}

// handleGrid serves /grids/{id} and /grids/{id}/heatmap.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.store == nil {
		writeJSONError(w, http.StatusNotFound, "grid store not configured")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/grids/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "missing grid id")
		return
	}

	rec, err := s.store.Get(id)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("grid %s not found", id))
		return
	}

	switch sub {
	case "":
		writeJSON(w, http.StatusOK, rec)
	case "heatmap":
		var surface gridstore.Surface
		if err := json.Unmarshal(rec.Surface, &surface); err != nil {
			writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("decoding surface: %v", err))
			return
		}
		subtitle := fmt.Sprintf("window=%s resolution=%d points=%d", rec.Window, rec.Resolution, rec.InputCount)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := monitor.RenderSurfaceHTML(w, "Density surface "+rec.ID, subtitle,
			surface.XFlat, surface.YFlat, surface.DensityFlat); err != nil {
			monitoring.Logf("api: rendering heatmap for %s: %v", rec.ID, err)
		}
	default:
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("unknown grid view %q", sub))
	}
}

// HandleHealth reports liveness; schedulers poll it before triggering runs.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "synoptic-density",
		"version": version.Version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("api: encoding response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
