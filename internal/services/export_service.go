package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"neo-platform/internal/extract"
	"neo-platform/internal/filters"
	"neo-platform/internal/models"
	"neo-platform/internal/writers"
	"neo-platform/pkg/logging"
	"neo-platform/pkg/metrics"
)

// ExportService loads the catalog files, selects close approaches and writes them out
type ExportService struct {
	loader  *extract.Loader
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// ExportResult contains export statistics
type ExportResult struct {
	Path     string
	Format   string
	Records  int
	Duration time.Duration
}

// NewExportService creates a new export service
func NewExportService(logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *ExportService {
	return &ExportService{
		loader:  extract.NewLoader(logger, metricsCollector),
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Load reads and links both catalog files
func (s *ExportService) Load(ctx context.Context, neoPath, cadPath string) (*models.Catalog, error) {
	catalog, _, err := s.loader.LoadCatalog(ctx, neoPath, cadPath)
	return catalog, err
}

// Query returns the approaches matching the criteria, in catalog order, truncated to limit (limit <= 0 is unlimited)
func (s *ExportService) Query(ctx context.Context, catalog *models.Catalog, criteria filters.Criteria, limit int) ([]*models.CloseApproach, error) {
	if err := criteria.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	matchers := filters.Build(criteria)
	results := filters.Limit(catalog.Query(matchers...), limit)

	s.logger.Debug(ctx, "[QUERY_COMPLETE] Close approaches selected", logging.Fields{
		"filters": len(matchers),
		"limit":   limit,
		"results": len(results),
	})

	return results, nil
}

// Export writes the approaches to path as CSV or JSON depending on its extension
func (s *ExportService) Export(ctx context.Context, catalog *models.Catalog, results []*models.CloseApproach, path string) (*ExportResult, error) {
	format, err := writers.FormatFor(path)
	if err != nil {
		s.metrics.RecordExportError("unknown", "unsupported_format")
		return nil, err
	}

	s.logger.Info(ctx, "[EXPORT_START] Writing close approaches", logging.Fields{
		"path":    path,
		"format":  format,
		"records": len(results),
	})

	start := time.Now()
	timer := s.metrics.NewTimer(s.metrics.ExportDuration.WithLabelValues(format))
	defer timer.ObserveDuration()

	if err := writers.Write(path, results, catalog); err != nil {
		errorType := "io_error"
		if errors.Is(err, models.ErrNotLinked) {
			errorType = "not_linked"
		}
		s.metrics.RecordExportError(format, errorType)
		s.logger.Error(ctx, "[EXPORT_ERROR] Export failed", logging.Fields{
			"path":   path,
			"format": format,
		}, err)
		return nil, err
	}

	result := &ExportResult{
		Path:     path,
		Format:   format,
		Records:  len(results),
		Duration: time.Since(start),
	}
	s.metrics.RecordExport(format, result.Records)

	s.logger.Info(ctx, "[EXPORT_COMPLETE] Close approaches written", logging.Fields{
		"path":        path,
		"format":      format,
		"records":     result.Records,
		"duration_ms": result.Duration.Milliseconds(),
	})

	return result, nil
}
