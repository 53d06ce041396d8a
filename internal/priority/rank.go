package priority

import (
	"fmt"
	"sort"
	"time"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"

	"github.com/fixmycity/backend/internal/domain"
	"github.com/fixmycity/backend/pkg/utils"
)

// zone is a ranking candidate before truncation
type zone struct {
	label   int
	members []int // indexes into the sorted complaint slice, ascending
	score   float64
	lat     float64
	lon     float64
}

// groupZones turns cluster labels into zones, honouring the noise policy
func groupZones(labels []int, clusters int, noise NoisePolicy) []zone {
	zones := make([]zone, clusters)
	for i := range zones {
		zones[i].label = i
	}
	for i, l := range labels {
		switch {
		case l >= 0:
			zones[l].members = append(zones[l].members, i)
		case noise == NoiseAsSingleton:
			zones = append(zones, zone{label: domain.NoiseLabel, members: []int{i}})
		}
	}
	return zones
}

// centroid averages member coordinates. Great-circle zones use the
// normalised sum of unit vectors so clusters straddling the antimeridian
// stay put.
func centroid(points []point, members []int, metric Metric) (float64, float64) {
	if len(members) == 1 {
		p := points[members[0]]
		return p.lat, p.lon
	}

	if metric == MetricPlanar {
		var lat, lon float64
		for _, m := range members {
			lat += points[m].lat
			lon += points[m].lon
		}
		n := float64(len(members))
		return lat / n, lon / n
	}

	var sum r3.Vector
	for _, m := range members {
		p := s2.PointFromLatLng(s2.LatLngFromDegrees(points[m].lat, points[m].lon))
		sum = sum.Add(p.Vector)
	}
	if sum.Norm() == 0 {
		p := points[members[0]]
		return p.lat, p.lon
	}
	ll := s2.LatLngFromPoint(s2.Point{Vector: sum.Normalize()})
	return ll.Lat.Degrees(), ll.Lng.Degrees()
}

// less orders zones by score, then size, then southernmost centroid, then
// lowest member id
func less(a, b zone, sorted []domain.Complaint) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	if len(a.members) != len(b.members) {
		return len(a.members) > len(b.members)
	}
	if a.lat != b.lat {
		return a.lat < b.lat
	}
	return sorted[a.members[0]].ID < sorted[b.members[0]].ID
}

// rankZones clusters, scores, sorts and truncates. It never mutates complaints.
func rankZones(complaints []domain.Complaint, top int, cfg Config, now time.Time) ([]domain.PriorityZone, error) {
	if top <= 0 {
		return nil, fmt.Errorf("priority: top %d must be positive: %w", top, domain.ErrInvalidInput)
	}

	sorted, err := sortByID(complaints)
	if err != nil {
		return nil, err
	}
	points, err := toPoints(sorted)
	if err != nil {
		return nil, err
	}
	for _, c := range sorted {
		if err := validateRecord(c); err != nil {
			return nil, err
		}
	}

	labels, clusters := dbscan(points, cfg.clusterOptions())
	zones := groupZones(labels, clusters, cfg.Noise)

	for i := range zones {
		z := &zones[i]
		size := len(z.members)
		for _, m := range z.members {
			s, err := ComputeComplaintScore(sorted[m], size, cfg.Weights, now)
			if err != nil {
				return nil, err
			}
			z.score += s
		}
		if cfg.Aggregation == AggregateMean {
			z.score /= float64(size)
		}
		z.lat, z.lon = centroid(points, z.members, cfg.Metric)
	}

	sort.SliceStable(zones, func(i, j int) bool { return less(zones[i], zones[j], sorted) })
	if len(zones) > top {
		zones = zones[:top]
	}

	out := make([]domain.PriorityZone, 0, len(zones))
	for i, z := range zones {
		out = append(out, toPriorityZone(i+1, z, sorted, now))
	}
	return out, nil
}

func toPriorityZone(rank int, z zone, sorted []domain.Complaint, now time.Time) domain.PriorityZone {
	pz := domain.PriorityZone{
		Rank:           rank,
		Label:          z.label,
		Latitude:       z.lat,
		Longitude:      z.lon,
		ComplaintCount: len(z.members),
		PriorityScore:  utils.RoundTo(z.score, 2),
		ComplaintIDs:   make([]int64, 0, len(z.members)),
	}
	for _, m := range z.members {
		c := sorted[m]
		pz.ComplaintIDs = append(pz.ComplaintIDs, c.ID)
		if c.Severity > pz.MaxSeverity {
			pz.MaxSeverity = c.Severity
		}
		if c.AreaImportance > pz.MaxAreaImportance {
			pz.MaxAreaImportance = c.AreaImportance
		}
		if age := AgeInDays(c.CreatedAt, now); age > pz.OldestAgeDays {
			pz.OldestAgeDays = age
		}
	}
	return pz
}

// scoreAll scores each complaint with the size of its own cluster; noise
// complaints count as clusters of one
func scoreAll(complaints []domain.Complaint, cfg Config, now time.Time) ([]domain.ComplaintScore, error) {
	sorted, err := sortByID(complaints)
	if err != nil {
		return nil, err
	}
	points, err := toPoints(sorted)
	if err != nil {
		return nil, err
	}

	labels, clusters := dbscan(points, cfg.clusterOptions())
	sizes := make([]int, clusters)
	for _, l := range labels {
		if l >= 0 {
			sizes[l]++
		}
	}

	out := make([]domain.ComplaintScore, 0, len(sorted))
	for i, c := range sorted {
		size := 1
		if labels[i] >= 0 {
			size = sizes[labels[i]]
		}
		s, err := ComputeComplaintScore(c, size, cfg.Weights, now)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.ComplaintScore{
			ID:          c.ID,
			Label:       labels[i],
			ClusterSize: size,
			Score:       utils.RoundTo(s, 2),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
