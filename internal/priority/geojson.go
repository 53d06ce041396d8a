package priority

import (
	geojson "github.com/paulmach/go.geojson"

	"github.com/fixmycity/backend/internal/domain"
)

// ZonesGeoJSON renders ranked zones as a FeatureCollection of centroid points
func ZonesGeoJSON(zones []domain.PriorityZone) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, z := range zones {
		f := geojson.NewPointFeature([]float64{z.Longitude, z.Latitude})
		f.SetProperty("rank", z.Rank)
		f.SetProperty("cluster", z.Label)
		f.SetProperty("complaint_count", z.ComplaintCount)
		f.SetProperty("priority_score", z.PriorityScore)
		f.SetProperty("severity", int(z.MaxSeverity))
		f.SetProperty("area_importance", z.MaxAreaImportance.Label())
		f.SetProperty("days_unresolved", z.OldestAgeDays)
		f.SetProperty("complaint_ids", z.ComplaintIDs)
		fc.AddFeature(f)
	}
	return fc
}
