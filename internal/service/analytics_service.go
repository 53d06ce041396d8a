package service

import (
	"context"
	"time"

	"github.com/fixmycity/backend/internal/domain"
)

// trendWindow is how far back the daily trend reaches
const trendWindow = 30 * 24 * time.Hour

// AnalyticsService computes complaint statistics on demand
type AnalyticsService struct {
	repo  ComplaintRepository
	clock func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(repo ComplaintRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo, clock: time.Now}
}

// GetAnalytics returns totals, breakdowns and the 30-day daily trend
func (s *AnalyticsService) GetAnalytics(ctx context.Context) (domain.Analytics, error) {
	return s.repo.GetAnalytics(ctx, s.clock().Add(-trendWindow))
}
