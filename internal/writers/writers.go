package writers

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"neo-platform/internal/models"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ErrUnsupportedFormat is returned for output paths that are neither .csv nor .json
var ErrUnsupportedFormat = errors.New("unsupported output format")

// CSVHeader is the fixed column order of exported CSV files
var CSVHeader = []string{
	"datetime_utc",
	"distance_au",
	"velocity_km_s",
	"designation",
	"name",
	"diameter_km",
	"potentially_hazardous",
}

// Serializer flattens a linked close approach; *models.Catalog implements it
type Serializer interface {
	Serialize(ca *models.CloseApproach) (models.ApproachRecord, error)
}

// ApproachJSON is one element of the exported JSON array
type ApproachJSON struct {
	DatetimeUTC string       `json:"datetime_utc"`
	DistanceAU  models.Float `json:"distance_au"`
	VelocityKmS models.Float `json:"velocity_km_s"`
	NEO         NEOJSON      `json:"neo"`
}

// NEOJSON is the object nested under "neo" in exported JSON
type NEOJSON struct {
	Designation          string       `json:"designation"`
	Name                 string       `json:"name"`
	DiameterKm           models.Float `json:"diameter_km"`
	PotentiallyHazardous bool         `json:"potentially_hazardous"`
}

// NewApproachJSON rearranges a serialized approach into the exported JSON layout
func NewApproachJSON(rec models.ApproachRecord) ApproachJSON {
	return ApproachJSON{
		DatetimeUTC: rec.DatetimeUTC,
		DistanceAU:  rec.DistanceAU,
		VelocityKmS: rec.VelocityKmS,
		NEO: NEOJSON{
			Designation:          rec.Designation,
			Name:                 rec.NEO.Name,
			DiameterKm:           rec.NEO.DiameterKm,
			PotentiallyHazardous: rec.NEO.PotentiallyHazardous,
		},
	}
}

// CSVRow renders a serialized approach in CSVHeader order
func CSVRow(rec models.ApproachRecord) []string {
	hazard := "False"
	if rec.NEO.PotentiallyHazardous {
		hazard = "True"
	}
	return []string{
		rec.DatetimeUTC,
		rec.DistanceAU.Text(),
		rec.VelocityKmS.Text(),
		rec.Designation,
		rec.NEO.Name,
		rec.NEO.DiameterKm.Text(),
		hazard,
	}
}

// FormatFor picks the output format from the file extension
func FormatFor(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q, expected .csv or .json", ErrUnsupportedFormat, path)
}

// Write exports the approaches in the format named by the path's extension
func Write(path string, results []*models.CloseApproach, s Serializer) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	if format == FormatCSV {
		return WriteCSV(path, results, s)
	}
	return WriteJSON(path, results, s)
}

// WriteCSV writes one header row and one row per approach, in the order given
func WriteCSV(path string, results []*models.CloseApproach, s Serializer) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	w := csv.NewWriter(file)
	if err := w.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}

	for i, ca := range results {
		rec, err := s.Serialize(ca)
		if err != nil {
			return fmt.Errorf("failed to serialize row %d for %s: %w", i, path, err)
		}
		if err := w.Write(CSVRow(rec)); err != nil {
			return fmt.Errorf("failed to write row %d to %s: %w", i, path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

// WriteJSON writes a tab-indented array with one object per approach, in the order given
func WriteJSON(path string, results []*models.CloseApproach, s Serializer) (err error) {
	out := make([]ApproachJSON, 0, len(results))
	for i, ca := range results {
		rec, err := s.Serialize(ca)
		if err != nil {
			return fmt.Errorf("failed to serialize element %d for %s: %w", i, path, err)
		}
		out = append(out, NewApproachJSON(rec))
	}

	data, err := json.MarshalIndent(out, "", "\t")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
