// Package usage provides per-tenant analysis volume tracking.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/medilint/medilint/internal/domain"
)

// Service tracks analysis volume per tenant. The cache counter is the
// fast path for the rolling window; the repository is authoritative.
type Service struct {
	repo  domain.Repository
	cache domain.Cache
}

// NewService creates a new usage service. Either argument may be nil;
// at least one data source is required for counting.
func NewService(repo domain.Repository, cache domain.Cache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

// Record counts one completed analysis against the tenant's rolling
// windows. Counter failures are non-fatal: the repository still holds
// the authoritative record.
func (s *Service) Record(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		return fmt.Errorf("tenantID is required")
	}
	if s.cache == nil {
		return nil
	}

	if _, err := s.cache.IncrementCounter(ctx, tenantID, "analyses:hourly", time.Hour); err != nil {
		return fmt.Errorf("failed to increment hourly counter: %w", err)
	}
	if _, err := s.cache.IncrementCounter(ctx, tenantID, "analyses:daily", 24*time.Hour); err != nil {
		return fmt.Errorf("failed to increment daily counter: %w", err)
	}

	return nil
}

// AnalysisCount returns the number of analyses for a tenant within a
// time window, counted from the repository.
func (s *Service) AnalysisCount(ctx context.Context, tenantID string, windowSecs int) (int64, error) {
	if tenantID == "" {
		return 0, fmt.Errorf("tenantID is required")
	}

	if s.repo == nil {
		return 0, fmt.Errorf("no data source available")
	}

	since := time.Now().Add(-time.Duration(windowSecs) * time.Second)
	count, err := s.repo.CountAnalysesSince(ctx, tenantID, since)
	if err != nil {
		return 0, fmt.Errorf("failed to count analyses: %w", err)
	}

	return count, nil
}

// Stats is the per-tenant usage snapshot served at the stats endpoint.
type Stats struct {
	TenantID    string `json:"tenantId"`
	LastHour    int64  `json:"lastHour"`
	Last24Hours int64  `json:"last24Hours"`
	Last7Days   int64  `json:"last7Days"`
}

// GetStats returns the usage snapshot for a tenant.
func (s *Service) GetStats(ctx context.Context, tenantID string) (*Stats, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenantID is required")
	}

	hourly, err := s.AnalysisCount(ctx, tenantID, 3600)
	if err != nil {
		return nil, err
	}
	daily, err := s.AnalysisCount(ctx, tenantID, 24*3600)
	if err != nil {
		return nil, err
	}
	weekly, err := s.AnalysisCount(ctx, tenantID, 7*24*3600)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TenantID:    tenantID,
		LastHour:    hourly,
		Last24Hours: daily,
		Last7Days:   weekly,
	}, nil
}
