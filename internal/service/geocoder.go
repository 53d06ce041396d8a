package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/fixmycity/backend/internal/domain"
	"github.com/fixmycity/backend/internal/metrics"
)

const geocoderUserAgent = "fixmycity-backend/1.0"

// Geocoder resolves area names to coordinates through a Nominatim search endpoint
type Geocoder struct {
	baseURL     string
	defaultCity string
	httpClient  *http.Client
}

// NewGeocoder creates a new geocoder. defaultCity is appended to queries
// that do not name one.
func NewGeocoder(baseURL, defaultCity string) *Geocoder {
	return &Geocoder{
		baseURL:     strings.TrimRight(baseURL, "/"),
		defaultCity: defaultCity,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// nominatimPlace is a single Nominatim search hit; coordinates arrive as strings
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode looks up an area. Any lookup failure falls back to the city
// center with status default_used; only an empty area name is an error.
func (g *Geocoder) Geocode(ctx context.Context, req domain.GeocodeRequest) (domain.GeocodeResult, error) {
	area := strings.TrimSpace(req.AreaName)
	if area == "" {
		return domain.GeocodeResult{}, fmt.Errorf("geocoder: area_name is required: %w", domain.ErrInvalidInput)
	}
	city := strings.TrimSpace(req.City)
	if city == "" {
		city = g.defaultCity
	}

	lat, lon, err := g.search(ctx, area+", "+city)
	if err != nil {
		log.WithError(err).WithField("area", area).Warn("geocoding failed, using city center")
		metrics.GeocodeTotal.WithLabelValues(domain.GeocodeDefaultUsed).Inc()
		return domain.GeocodeResult{
			AreaName:  area,
			Latitude:  domain.ChennaiCenterLat,
			Longitude: domain.ChennaiCenterLon,
			Status:    domain.GeocodeDefaultUsed,
		}, nil
	}

	metrics.GeocodeTotal.WithLabelValues(domain.GeocodeSuccess).Inc()
	return domain.GeocodeResult{
		AreaName:  area,
		Latitude:  lat,
		Longitude: lon,
		Status:    domain.GeocodeSuccess,
	}, nil
}

func (g *Geocoder) search(ctx context.Context, query string) (float64, float64, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("geocoder: failed to create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", geocoderUserAgent)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return 0, 0, fmt.Errorf("geocoder: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocoder: search returned status %d", resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return 0, 0, fmt.Errorf("geocoder: failed to decode response: %w", err)
	}
	if len(places) == 0 {
		return 0, 0, fmt.Errorf("geocoder: no match for %q", query)
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("geocoder: bad latitude %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("geocoder: bad longitude %q: %w", places[0].Lon, err)
	}
	return lat, lon, nil
}
