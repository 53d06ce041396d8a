package domain

// Chennai city center coordinates, used when an area cannot be geocoded
const (
	ChennaiCenterLat = 13.0827
	ChennaiCenterLon = 80.2707
)

// Geocode outcomes
const (
	GeocodeSuccess     = "success"
	GeocodeDefaultUsed = "default_used"
)

// GeocodeRequest asks for the coordinates of an area
type GeocodeRequest struct {
	AreaName string `json:"area_name"`
	City     string `json:"city,omitempty"`
}

// GeocodeResult is the resolved location of an area
type GeocodeResult struct {
	AreaName  string  `json:"area_name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Status    string  `json:"status"`
}
