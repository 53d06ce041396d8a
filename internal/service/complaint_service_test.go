package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixmycity/backend/internal/domain"
	"github.com/fixmycity/backend/internal/repository/postgres"
)

func newTestComplaintService(t *testing.T, geocoderURL string) (*ComplaintService, *postgres.MockRepository) {
	t.Helper()
	repo := postgres.NewMockRepository(fixture()...)
	svc := NewComplaintService(repo, NewGeocoder(geocoderURL, "Chennai"))
	svc.clock = func() time.Time { return testNow }
	return svc, repo
}

func TestComplaintService_CreateWithCoordinates(t *testing.T) {
	svc, _ := newTestComplaintService(t, "http://unused")
	high := domain.AreaImportanceHigh

	c, err := svc.Create(context.Background(), domain.CreateComplaintRequest{
		Category:       " garbage ",
		Severity:       domain.SeverityHigh,
		Description:    "Overflowing bin",
		Latitude:       domain.Float64(13.05),
		Longitude:      domain.Float64(80.25),
		AreaImportance: &high,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(6), c.ID)
	assert.Equal(t, "garbage", c.Category)
	assert.Equal(t, domain.StatusUnresolved, c.Status)
	assert.Equal(t, domain.AreaImportanceHigh, c.AreaImportance)
	assert.Equal(t, testNow, c.CreatedAt)

	stored, err := svc.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, stored)
}

func TestComplaintService_CreateGeocodesAreaName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"lat":"13.0418","lon":"80.2341"}]`))
	}))
	defer srv.Close()
	svc, _ := newTestComplaintService(t, srv.URL)

	c, err := svc.Create(context.Background(), domain.CreateComplaintRequest{
		Category:    "pothole",
		Severity:    domain.SeverityMedium,
		Description: "Deep pothole",
		AreaName:    "T Nagar",
	})
	require.NoError(t, err)

	require.True(t, c.Located())
	assert.Equal(t, 13.0418, *c.Latitude)
	assert.Equal(t, 80.2341, *c.Longitude)
	assert.Equal(t, domain.AreaImportanceNormal, c.AreaImportance)
}

func TestComplaintService_CreateValidation(t *testing.T) {
	svc, _ := newTestComplaintService(t, "http://unused")
	tooImportant := domain.AreaImportance(7)

	valid := func() domain.CreateComplaintRequest {
		return domain.CreateComplaintRequest{
			Category:    "pothole",
			Severity:    domain.SeverityLow,
			Description: "Crack",
			Latitude:    domain.Float64(13),
			Longitude:   domain.Float64(80),
		}
	}

	tests := []struct {
		name   string
		mutate func(*domain.CreateComplaintRequest)
	}{
		{"missing category", func(r *domain.CreateComplaintRequest) { r.Category = " " }},
		{"missing description", func(r *domain.CreateComplaintRequest) { r.Description = "" }},
		{"missing severity", func(r *domain.CreateComplaintRequest) { r.Severity = 0 }},
		{"severity too high", func(r *domain.CreateComplaintRequest) { r.Severity = 6 }},
		{"latitude only", func(r *domain.CreateComplaintRequest) { r.Longitude = nil }},
		{"no location", func(r *domain.CreateComplaintRequest) { r.Latitude, r.Longitude = nil, nil }},
		{"latitude out of range", func(r *domain.CreateComplaintRequest) { r.Latitude = domain.Float64(91) }},
		{"area importance out of range", func(r *domain.CreateComplaintRequest) { r.AreaImportance = &tooImportant }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			_, err := svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestComplaintService_List(t *testing.T) {
	svc, _ := newTestComplaintService(t, "http://unused")

	open, err := svc.List(context.Background(), domain.ComplaintFilter{Status: domain.StatusUnresolved})
	require.NoError(t, err)
	assert.Len(t, open, 4)

	_, err = svc.List(context.Background(), domain.ComplaintFilter{Status: "closed"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.List(context.Background(), domain.ComplaintFilter{Severity: 9})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestComplaintService_SetStatus(t *testing.T) {
	svc, _ := newTestComplaintService(t, "http://unused")
	none := domain.StatusChangeRequest{}

	c, err := svc.SetStatus(context.Background(), 1, domain.StatusResolved, none)
	require.NoError(t, err)
	assert.True(t, c.Resolved())

	c, err = svc.SetStatus(context.Background(), 1, domain.StatusUnresolved, none)
	require.NoError(t, err)
	assert.False(t, c.Resolved())

	_, err = svc.SetStatus(context.Background(), 404, domain.StatusResolved, none)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.SetStatus(context.Background(), 1, "archived", none)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestComplaintService_SetStatusRecordsAction(t *testing.T) {
	svc, _ := newTestComplaintService(t, "http://unused")

	_, err := svc.SetStatus(context.Background(), 2, domain.StatusResolved,
		domain.StatusChangeRequest{Actor: " officer-3 ", Notes: " cleared the bin "})
	require.NoError(t, err)

	actions, err := svc.Actions(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, int64(2), actions[0].ComplaintID)
	assert.Equal(t, domain.StatusResolved, actions[0].Action)
	assert.Equal(t, "officer-3", actions[0].Actor)
	assert.Equal(t, "cleared the bin", actions[0].Notes)
	assert.Equal(t, testNow, actions[0].CreatedAt)

	// a rejected change leaves no trace
	_, err = svc.SetStatus(context.Background(), 2, "archived", domain.StatusChangeRequest{Notes: "x"})
	require.Error(t, err)
	actions, err = svc.Actions(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, actions, 1)

	_, err = svc.Actions(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
