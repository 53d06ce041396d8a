package postgres

import (
	"math/rand"
	"time"

	"github.com/fixmycity/backend/internal/domain"
)

var demoCategories = []string{"pothole", "garbage", "streetlight", "water leakage", "drainage"}

// DemoComplaints generates a deterministic set of complaints clustered
// around known Chennai trouble spots, for running without a database
func DemoComplaints(now time.Time) []domain.Complaint {
	rng := rand.New(rand.NewSource(2024))

	hotspots := []struct {
		lat, lon   float64
		name       string
		weight     float64
		importance domain.AreaImportance
	}{
		{13.0418, 80.2341, "T Nagar", 1.3, domain.AreaImportanceHigh},           // Market
		{13.0850, 80.2101, "Anna Nagar", 0.9, domain.AreaImportanceNormal},      // Residential
		{13.0339, 80.2676, "Mylapore", 1.1, domain.AreaImportanceHigh},          // Temple, schools
		{13.0012, 80.2565, "Adyar", 0.8, domain.AreaImportanceNormal},           // Residential
		{12.9750, 80.2212, "Velachery", 1.2, domain.AreaImportanceNormal},       // Flood prone
		{13.0900, 80.2870, "Parrys Corner", 1.0, domain.AreaImportanceCritical}, // Hospital belt
		{13.0067, 80.2206, "Guindy", 0.7, domain.AreaImportanceLow},             // Industrial
		{13.0780, 80.2609, "Egmore", 1.1, domain.AreaImportanceCritical},        // Hospital, station
	}

	var (
		out []domain.Complaint
		id  int64
	)
	for _, spot := range hotspots {
		numPoints := int(float64(2+rng.Intn(5)) * spot.weight)
		for i := 0; i < numPoints; i++ {
			// Random offset within ~400m
			latOffset := (rng.Float64() - 0.5) * 0.007
			lonOffset := (rng.Float64() - 0.5) * 0.007

			id++
			status := domain.StatusUnresolved
			if rng.Float64() < 0.25 {
				status = domain.StatusResolved
			}
			out = append(out, domain.Complaint{
				ID:             id,
				Category:       demoCategories[rng.Intn(len(demoCategories))],
				Severity:       domain.Severity(1 + rng.Intn(4)),
				Description:    "Reported near " + spot.name,
				Latitude:       domain.Float64(spot.lat + latOffset),
				Longitude:      domain.Float64(spot.lon + lonOffset),
				AreaName:       spot.name,
				CreatedAt:      now.Add(-time.Duration(rng.Intn(30*24)) * time.Hour),
				Status:         status,
				AreaImportance: spot.importance,
			})
		}
	}

	return out
}
