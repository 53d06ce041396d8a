package priority

import (
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/fixmycity/backend/internal/domain"
	"github.com/fixmycity/backend/pkg/utils"
)

const unvisited = -2

// point is a located complaint in processing order
type point struct {
	idx      int // position in the sorted complaint slice
	id       int64
	lat, lon float64
}

// sortByID returns a copy of complaints ordered by ID, rejecting duplicates
func sortByID(complaints []domain.Complaint) ([]domain.Complaint, error) {
	sorted := make([]domain.Complaint, len(complaints))
	copy(sorted, complaints)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].ID == sorted[i-1].ID {
			return nil, fmt.Errorf("priority: duplicate complaint id %d: %w", sorted[i].ID, domain.ErrInvalidInput)
		}
	}
	return sorted, nil
}

// toPoints extracts coordinates from complaints already sorted by ID
func toPoints(sorted []domain.Complaint) ([]point, error) {
	points := make([]point, len(sorted))
	for i, c := range sorted {
		if !c.Located() {
			return nil, fmt.Errorf("priority: complaint %d has no coordinates: %w", c.ID, domain.ErrMalformedRecord)
		}
		lat, lon := *c.Latitude, *c.Longitude
		if !utils.ValidCoordinate(lat, lon) {
			return nil, fmt.Errorf("priority: complaint %d coordinates (%g, %g) out of bounds: %w", c.ID, lat, lon, domain.ErrMalformedRecord)
		}
		points[i] = point{idx: i, id: c.ID, lat: lat, lon: lon}
	}
	return points, nil
}

// ClusterComplaints groups complaints with DBSCAN and returns the label of
// every complaint. Labels run 0..Clusters-1 in discovery order over ascending
// IDs; domain.NoiseLabel marks noise. The result does not depend on the order
// of the input slice.
func ClusterComplaints(complaints []domain.Complaint, opts ClusterOptions) (domain.Hotspots, error) {
	if err := opts.Validate(); err != nil {
		return domain.Hotspots{}, err
	}

	sorted, err := sortByID(complaints)
	if err != nil {
		return domain.Hotspots{}, err
	}
	points, err := toPoints(sorted)
	if err != nil {
		return domain.Hotspots{}, err
	}

	labels, clusters := dbscan(points, opts)

	out := domain.Hotspots{
		Labels:   make(map[int64]int, len(points)),
		Clusters: clusters,
	}
	for i, p := range points {
		out.Labels[p.id] = labels[i]
		if labels[i] == domain.NoiseLabel {
			out.Noise++
		}
	}
	return out, nil
}

// dbscan labels points. A core point has at least MinPoints other points
// within Epsilon; border points join the first cluster that reaches them.
func dbscan(points []point, opts ClusterOptions) ([]int, int) {
	neighbors := neighborhoods(points, opts)

	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = unvisited
	}

	cluster := 0
	for i := range points {
		if labels[i] != unvisited {
			continue
		}
		if len(neighbors[i]) < opts.MinPoints {
			labels[i] = domain.NoiseLabel
			continue
		}

		labels[i] = cluster
		queue := append([]int(nil), neighbors[i]...)
		for q := 0; q < len(queue); q++ {
			j := queue[q]
			if labels[j] == domain.NoiseLabel {
				labels[j] = cluster
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = cluster
			if len(neighbors[j]) >= opts.MinPoints {
				queue = append(queue, neighbors[j]...)
			}
		}
		cluster++
	}

	return labels, cluster
}

// neighborhoods returns, for every point, the ascending indexes of the other
// points within epsilon. Rows are computed in parallel; each worker writes
// only its own rows so the result equals a sequential scan.
func neighborhoods(points []point, opts ClusterOptions) [][]int {
	n := len(points)
	out := make([][]int, n)
	if n == 0 {
		return out
	}

	find := naiveSearch(points, opts)
	if opts.Metric == MetricGreatCircle && opts.IndexThreshold > 0 && n >= opts.IndexThreshold {
		find = newCellIndex(points, opts.Epsilon).within
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		lo, hi := start, start+chunk
		if hi > n {
			hi = n
		}
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				out[i] = find(i)
			}
			return nil
		})
	}
	// workers never fail; Wait only joins them
	_ = g.Wait()

	return out
}

func distanceFunc(m Metric) func(a, b point) float64 {
	if m == MetricPlanar {
		return func(a, b point) float64 { return utils.Euclidean(a.lat, a.lon, b.lat, b.lon) }
	}
	return func(a, b point) float64 { return utils.Haversine(a.lat, a.lon, b.lat, b.lon) }
}

// naiveSearch compares a point against every other point, O(n) per row
func naiveSearch(points []point, opts ClusterOptions) func(i int) []int {
	dist := distanceFunc(opts.Metric)
	return func(i int) []int {
		var row []int
		for j := range points {
			if j != i && dist(points[i], points[j]) <= opts.Epsilon {
				row = append(row, j)
			}
		}
		return row
	}
}
