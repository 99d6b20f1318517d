package services

import (
	"context"

	"neo-platform/internal/repository"
	"neo-platform/pkg/logging"
	"neo-platform/pkg/metrics"
)

// ApproachService handles read access to stored close approaches
type ApproachService struct {
	repo    repository.ApproachRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewApproachService creates a new approach service
func NewApproachService(repo repository.ApproachRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *ApproachService {
	return &ApproachService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ListApproaches retrieves close approaches with filtering
func (s *ApproachService) ListApproaches(ctx context.Context, filter repository.ApproachFilter) (*repository.ApproachPage, error) {
	return s.repo.ListApproaches(ctx, filter)
}

// GetNEO retrieves an object with its close approaches
func (s *ApproachService) GetNEO(ctx context.Context, designation string) (*repository.NEOView, error) {
	return s.repo.GetNEO(ctx, designation)
}

// HealthCheck reports whether the backing store is reachable
func (s *ApproachService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}
