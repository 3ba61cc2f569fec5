// Package gridstore persists computed density surfaces in sqlite as a
// time-indexed store, so downstream consumers can compare windows and
// re-grid flattened (x, y, density) triples without recomputing.
package gridstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/synoptic.report/internal/density"
)

// GridRecord is one persisted density surface. Surface holds the flattened,
// index-aligned form of the result (x_flat, y_flat, density_flat, centers)
// as JSON; consumers must not assume a fixed resolution across records.
type GridRecord struct {
	ID             string          `json:"id"`
	Window         string          `json:"window"`
	CreatedAt      time.Time       `json:"created_at"`
	Resolution     int             `json:"resolution"`
	Bounds         density.Bounds  `json:"bounds"`
	SampleFraction float64         `json:"sample_fraction"`
	InputCount     int             `json:"input_count"`
	SampledCount   int             `json:"sampled_count"`
	Surface        json.RawMessage `json:"surface,omitempty"`
}

// Surface is the JSON payload stored per grid.
type Surface struct {
	XCenters    []float64 `json:"x_centers"`
	YCenters    []float64 `json:"y_centers"`
	XFlat       []float64 `json:"x_flat"`
	YFlat       []float64 `json:"y_flat"`
	DensityFlat []float64 `json:"density_flat"`
}

// GridStore provides persistence for density surfaces.
type GridStore struct {
	db *sql.DB
}

// NewGridStore creates a new GridStore over an open database.
func NewGridStore(db *sql.DB) *GridStore {
	return &GridStore{db: db}
}

// RecordFromResult builds a GridRecord from an estimation result. The window
// label is caller-defined (e.g. an ingestion window identifier).
func RecordFromResult(res *density.Result, window string) (*GridRecord, error) {
	surface, err := json.Marshal(Surface{
		XCenters:    res.XCenters,
		YCenters:    res.YCenters,
		XFlat:       res.XFlat,
		YFlat:       res.YFlat,
		DensityFlat: res.DensityFlat,
	})
	if err != nil {
		return nil, fmt.Errorf("marshalling surface: %w", err)
	}
	return &GridRecord{
		ID:             uuid.NewString(),
		Window:         window,
		CreatedAt:      time.Now().UTC(),
		Resolution:     res.Resolution,
		Bounds:         res.Bounds,
		SampleFraction: res.SampleFraction,
		InputCount:     res.InputCount,
		SampledCount:   res.SampledCount,
		Surface:        surface,
	}, nil
}

// Insert stores a grid record. A missing ID or CreatedAt is filled in.
func (s *GridStore) Insert(rec *GridRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO density_grids (
			grid_id, window_label, created_at, resolution,
			x_min, x_max, y_min, y_max,
			sample_fraction, input_count, sampled_count, surface
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	err := retryOnBusy(func() error {
		_, err := s.db.Exec(query,
			rec.ID,
			nullStr(rec.Window),
			rec.CreatedAt.UTC().Format(time.RFC3339Nano),
			rec.Resolution,
			rec.Bounds.XMin, rec.Bounds.XMax, rec.Bounds.YMin, rec.Bounds.YMax,
			rec.SampleFraction,
			rec.InputCount,
			rec.SampledCount,
			nullJSON(rec.Surface),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("inserting grid %s: %w", rec.ID, err)
	}
	return nil
}

const selectColumns = `
	grid_id, COALESCE(window_label, ''), created_at, resolution,
	x_min, x_max, y_min, y_max,
	sample_fraction, input_count, sampled_count
`

// Get returns one grid by id, including its surface payload. Returns
// sql.ErrNoRows when the id is unknown.
func (s *GridStore) Get(id string) (*GridRecord, error) {
	query := `SELECT ` + selectColumns + `, surface FROM density_grids WHERE grid_id = ?`
	row := s.db.QueryRow(query, id)

	var surface sql.NullString
	rec, err := scanRecord(row.Scan, &surface)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("loading grid %s: %w", id, err)
	}
	rec.Surface = jsonOrNil(surface)
	return rec, nil
}

// List returns up to limit grid records, newest first, without surface
// payloads (they can be megabytes each).
func (s *GridStore) List(limit int) ([]GridRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + selectColumns + ` FROM density_grids ORDER BY created_at DESC LIMIT ?`
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing grids: %w", err)
	}
	defer rows.Close()

	var records []GridRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan, nil)
		if err != nil {
			return nil, fmt.Errorf("scanning grid row: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Latest returns the most recently stored grid with its surface, or nil when
// the store is empty.
func (s *GridStore) Latest() (*GridRecord, error) {
	query := `SELECT ` + selectColumns + `, surface FROM density_grids ORDER BY created_at DESC LIMIT 1`
	row := s.db.QueryRow(query)

	var surface sql.NullString
	rec, err := scanRecord(row.Scan, &surface)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading latest grid: %w", err)
	}
	rec.Surface = jsonOrNil(surface)
	return rec, nil
}

// Prune deletes all but the newest keep records and returns how many rows
// were removed. keep <= 0 is a no-op.
func (s *GridStore) Prune(keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	query := `
		DELETE FROM density_grids
		WHERE grid_id NOT IN (
			SELECT grid_id FROM density_grids ORDER BY created_at DESC LIMIT ?
		)
	`
	var deleted int64
	err := retryOnBusy(func() error {
		res, err := s.db.Exec(query, keep)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("pruning grids: %w", err)
	}
	return deleted, nil
}

// scanRecord scans the selectColumns set, plus the surface column when a
// destination for it is supplied.
func scanRecord(scan func(dest ...any) error, surface *sql.NullString) (*GridRecord, error) {
	var rec GridRecord
	var createdAt string
	dest := []any{
		&rec.ID, &rec.Window, &createdAt, &rec.Resolution,
		&rec.Bounds.XMin, &rec.Bounds.XMax, &rec.Bounds.YMin, &rec.Bounds.YMax,
		&rec.SampleFraction, &rec.InputCount, &rec.SampledCount,
	}
	if surface != nil {
		dest = append(dest, surface)
	}
	if err := scan(dest...); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	rec.CreatedAt = t
	return &rec, nil
}
