package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"neo-platform/internal/models"
	"neo-platform/pkg/logging"
	"neo-platform/pkg/metrics"
)

const (
	kindNEO = "neo"
	kindCAD = "cad"

	// individual diagnostics are logged up to this count per file, the rest are only counted
	maxLoggedDiagnostics = 20
)

// Loader turns the NASA catalog files into linked entities
type Loader struct {
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// Rejection describes a record dropped because a required field was unusable
// Line is the CSV line for NEO records and the zero-based data row for close approaches
type Rejection struct {
	Line        int
	Designation string
	Err         error
}

// LoadResult contains load statistics for both catalog files
type LoadResult struct {
	NEORecords      int
	ApproachRecords int
	Rejected        []Rejection
	Diagnostics     int
	Duration        time.Duration
}

// NewLoader creates a new catalog loader
func NewLoader(logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *Loader {
	return &Loader{
		logger:  logger,
		metrics: metricsCollector,
	}
}

// LoadNEOs reads the NEO catalog CSV
func (l *Loader) LoadNEOs(ctx context.Context, path string, result *LoadResult) ([]*models.NearEarthObject, error) {
	timer := l.metrics.NewTimer(l.metrics.LoadDuration.WithLabelValues(kindNEO))
	defer timer.ObserveDuration()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open neo catalog %s: %w", path, err)
	}
	defer file.Close()

	records, header, err := ReadNEORecords(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read neo catalog %s: %w", path, err)
	}
	log := l.logger.WithFields(logging.Fields{"kind": kindNEO, "path": path})
	l.reportUnrecognized(ctx, log, header, models.NEOKeys())

	neos := make([]*models.NearEarthObject, 0, len(records))
	logged := 0
	for i, rec := range records {
		line := i + 2 // header occupies line 1
		neo, diags, err := models.NewNearEarthObject(models.NEOFieldsFromRecord(rec))
		if err != nil {
			l.reject(ctx, log, kindNEO, result, Rejection{Line: line, Designation: rec[models.KeyDesignation], Err: err})
			continue
		}
		logged = l.reportDiagnostics(ctx, log, kindNEO, neo.Designation(), line, diags, logged)
		result.Diagnostics += len(diags)
		neos = append(neos, neo)
	}

	result.NEORecords += len(records)
	l.metrics.RecordLoad(kindNEO, len(records))

	return neos, nil
}

// LoadApproaches reads the close approach JSON document
func (l *Loader) LoadApproaches(ctx context.Context, path string, result *LoadResult) ([]*models.CloseApproach, error) {
	timer := l.metrics.NewTimer(l.metrics.LoadDuration.WithLabelValues(kindCAD))
	defer timer.ObserveDuration()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open close approach data %s: %w", path, err)
	}
	defer file.Close()

	records, fields, err := ReadCADRecords(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read close approach data %s: %w", path, err)
	}
	log := l.logger.WithFields(logging.Fields{"kind": kindCAD, "path": path})
	l.reportUnrecognized(ctx, log, fields, models.ApproachKeys())

	approaches := make([]*models.CloseApproach, 0, len(records))
	logged := 0
	for i, rec := range records {
		ca, diags, err := models.NewCloseApproach(models.ApproachFieldsFromRecord(rec))
		if err != nil {
			l.reject(ctx, log, kindCAD, result, Rejection{Line: i, Designation: rec[models.KeyApproachDesignation], Err: err})
			continue
		}
		logged = l.reportDiagnostics(ctx, log, kindCAD, ca.Designation(), i, diags, logged)
		result.Diagnostics += len(diags)
		approaches = append(approaches, ca)
	}

	result.ApproachRecords += len(records)
	l.metrics.RecordLoad(kindCAD, len(records))

	return approaches, nil
}

// LoadCatalog loads both files and links every close approach to its NEO
func (l *Loader) LoadCatalog(ctx context.Context, neoPath, cadPath string) (*models.Catalog, *LoadResult, error) {
	startTime := time.Now()
	result := &LoadResult{}

	l.logger.Info(ctx, "[LOAD_START] Loading NEO catalog", logging.Fields{
		"neo_path": neoPath,
		"cad_path": cadPath,
		"stage":    "INITIALIZATION",
	})

	neos, err := l.LoadNEOs(ctx, neoPath, result)
	if err != nil {
		return nil, result, err
	}

	approaches, err := l.LoadApproaches(ctx, cadPath, result)
	if err != nil {
		return nil, result, err
	}

	catalog, err := models.NewCatalog(neos, approaches)
	if err != nil {
		l.logger.Error(ctx, "[LOAD_LINK_ERROR] Failed to link close approaches", logging.Fields{
			"neo_count":      len(neos),
			"approach_count": len(approaches),
			"stage":          "LINKING",
		}, err)
		return nil, result, fmt.Errorf("failed to link catalog: %w", err)
	}

	result.Duration = time.Since(startTime)
	l.metrics.UpdateCatalogSize(len(neos), len(approaches))

	l.logger.Info(ctx, "[LOAD_COMPLETE] NEO catalog loaded", logging.Fields{
		"neo_records":      result.NEORecords,
		"approach_records": result.ApproachRecords,
		"neos":             len(neos),
		"approaches":       len(approaches),
		"rejected":         len(result.Rejected),
		"diagnostics":      result.Diagnostics,
		"duration_seconds": result.Duration.Seconds(),
		"stage":            "COMPLETE",
	})

	return catalog, result, nil
}

func (l *Loader) reject(ctx context.Context, log *logging.ContextLogger, kind string, result *LoadResult, r Rejection) {
	result.Rejected = append(result.Rejected, r)

	field := "unknown"
	var verr *models.ValidationError
	if errors.As(r.Err, &verr) {
		field = verr.Field
	}
	l.metrics.RecordRejected(kind, field)

	log.Error(ctx, "[LOAD_RECORD_REJECTED] Record rejected", logging.Fields{
		"line":        r.Line,
		"designation": r.Designation,
		"field":       field,
	}, r.Err)
}

func (l *Loader) reportDiagnostics(ctx context.Context, log *logging.ContextLogger, kind, designation string, line int, diags models.Diagnostics, logged int) int {
	for _, d := range diags {
		l.metrics.RecordDiagnostic(kind, d.Field)
		if logged >= maxLoggedDiagnostics {
			continue
		}
		logged++
		log.Warn(ctx, "[LOAD_FIELD_UNKNOWN] Field degraded to unknown", logging.Fields{
			"line":        line,
			"designation": designation,
			"field":       d.Field,
			"value":       d.Value,
			"reason":      d.Message,
		})
	}
	return logged
}

func (l *Loader) reportUnrecognized(ctx context.Context, log *logging.ContextLogger, columns, known []string) {
	header := make(models.RawRecord, len(columns))
	for _, c := range columns {
		header[c] = ""
	}
	extra := header.Unrecognized(known)
	if len(extra) == 0 {
		return
	}
	log.Debug(ctx, "[LOAD_COLUMNS_IGNORED] Ignoring unrecognized columns", logging.Fields{
		"columns": extra,
	})
}
