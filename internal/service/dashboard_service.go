package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/apex/log"

	"github.com/fixmycity/backend/internal/domain"
)

// DashboardService aggregates analytics and the current priority zones
type DashboardService struct {
	analyticsSvc *AnalyticsService
	prioritySvc  *PriorityService
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(analyticsSvc *AnalyticsService, prioritySvc *PriorityService) *DashboardService {
	return &DashboardService{
		analyticsSvc: analyticsSvc,
		prioritySvc:  prioritySvc,
	}
}

// GetDashboardData fetches analytics and zones concurrently. A failing half
// is logged and left empty so the dashboard still renders; only when both
// halves fail is an error returned.
func (s *DashboardService) GetDashboardData(ctx context.Context) (domain.DashboardData, error) {
	var (
		analytics domain.Analytics
		zones     []domain.PriorityZone
		wg        sync.WaitGroup
		mu        sync.Mutex
		errs      []error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		a, err := s.analyticsSvc.GetAnalytics(ctx)
		mu.Lock()
		if err != nil {
			errs = append(errs, err)
		} else {
			analytics = a
		}
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		z, err := s.prioritySvc.RankZones(ctx, ZoneQuery{})
		mu.Lock()
		if err != nil {
			errs = append(errs, err)
		} else {
			zones = z
		}
		mu.Unlock()
	}()

	wg.Wait()

	for _, err := range errs {
		log.WithError(err).Error("dashboard data fetch failed")
	}
	if len(errs) == 2 {
		return domain.DashboardData{}, errors.Join(errs...)
	}
	if zones == nil {
		zones = []domain.PriorityZone{}
	}

	return domain.DashboardData{
		Analytics:     analytics,
		PriorityZones: zones,
		Timestamp:     time.Now(),
	}, nil
}
