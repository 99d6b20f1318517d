package services

import (
	"context"
	"fmt"
	"time"

	"neo-platform/internal/extract"
	"neo-platform/internal/repository"
	"neo-platform/pkg/logging"
	"neo-platform/pkg/metrics"
)

// IngestionService loads the NASA catalog files and stores the linked catalog
type IngestionService struct {
	loader  *extract.Loader
	repo    repository.ApproachRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// IngestionResult contains ingestion statistics
type IngestionResult struct {
	NEORecords      int
	ApproachRecords int
	Rejected        int
	Diagnostics     int
	NEOsStored      int
	ApproachesSaved int
	Duration        time.Duration
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(repo repository.ApproachRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *IngestionService {
	return &IngestionService{
		loader:  extract.NewLoader(logger, metricsCollector),
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Ingest loads and links both files, then upserts the catalog in one transaction
func (s *IngestionService) Ingest(ctx context.Context, neoPath, cadPath string) (*IngestionResult, error) {
	startTime := time.Now()

	s.logger.Info(ctx, "[INGEST_START] Starting catalog ingestion", logging.Fields{
		"neo_path": neoPath,
		"cad_path": cadPath,
		"stage":    "INITIALIZATION",
	})

	catalog, load, err := s.loader.LoadCatalog(ctx, neoPath, cadPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	saved, err := s.repo.SaveCatalog(ctx, catalog)
	if err != nil {
		s.logger.Error(ctx, "[INGEST_SAVE_ERROR] Failed to store catalog", logging.Fields{
			"neos":       len(catalog.NEOs()),
			"approaches": len(catalog.Approaches()),
			"stage":      "STORAGE",
		}, err)
		return nil, fmt.Errorf("failed to store catalog: %w", err)
	}

	result := &IngestionResult{
		NEORecords:      load.NEORecords,
		ApproachRecords: load.ApproachRecords,
		Rejected:        len(load.Rejected),
		Diagnostics:     load.Diagnostics,
		NEOsStored:      saved.NEOs,
		ApproachesSaved: saved.Approaches,
		Duration:        time.Since(startTime),
	}

	s.logger.Info(ctx, "[INGEST_COMPLETE] Catalog ingestion completed", logging.Fields{
		"neo_records":      result.NEORecords,
		"approach_records": result.ApproachRecords,
		"rejected":         result.Rejected,
		"diagnostics":      result.Diagnostics,
		"neos_stored":      result.NEOsStored,
		"approaches_saved": result.ApproachesSaved,
		"duration_seconds": result.Duration.Seconds(),
		"stage":            "COMPLETE",
	})

	return result, nil
}
