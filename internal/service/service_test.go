package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fixmycity/backend/internal/domain"
	"github.com/fixmycity/backend/internal/priority"
	"github.com/fixmycity/backend/internal/repository/postgres"
)

var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func located(id int64, lat, lon float64, sev domain.Severity, ai domain.AreaImportance, ageDays int, status domain.Status) domain.Complaint {
	return domain.Complaint{
		ID:             id,
		Category:       "pothole",
		Severity:       sev,
		Description:    "test complaint",
		Latitude:       domain.Float64(lat),
		Longitude:      domain.Float64(lon),
		CreatedAt:      testNow.Add(-time.Duration(ageDays) * 24 * time.Hour),
		Status:         status,
		AreaImportance: ai,
	}
}

// fixture holds a tight pair (1,2), a resolved complaint on top of them (3),
// an outlier 8 km away (4) and a complaint without coordinates (5)
func fixture() []domain.Complaint {
	unlocated := located(5, 0, 0, 4, 1, 3, domain.StatusUnresolved)
	unlocated.Latitude, unlocated.Longitude = nil, nil

	return []domain.Complaint{
		located(1, 13.0400, 80.2300, 3, 1, 2, domain.StatusUnresolved),
		located(2, 13.0410, 80.2305, 2, 1, 0, domain.StatusUnresolved),
		located(3, 13.0405, 80.2302, 5, 3, 20, domain.StatusResolved),
		located(4, 13.1000, 80.2800, 1, 1, 1, domain.StatusUnresolved),
		unlocated,
	}
}

func newTestPriorityService(t *testing.T, repo ComplaintRepository) *PriorityService {
	t.Helper()
	engine, err := priority.New(priority.DefaultConfig(), priority.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	return NewPriorityService(repo, engine, 5)
}

func newFixtureRepo() *postgres.MockRepository {
	return postgres.NewMockRepository(fixture()...)
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
