package priority

import (
	"sort"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/fixmycity/backend/pkg/utils"
)

// capSlack widens the search cap so points sitting exactly on the epsilon
// boundary are never lost to floating point error
const capSlack = 1e-9

// cellIndex buckets points into s2 cells at least epsilon wide. A query
// covers a cap of radius epsilon with cells of that level and only checks
// the points stored in them.
type cellIndex struct {
	points []point
	eps    float64
	angle  s1.Angle
	level  int
	cells  map[s2.CellID][]int
}

func newCellIndex(points []point, epsKm float64) *cellIndex {
	angle := s1.Angle(epsKm / utils.EarthRadiusKm)
	level := s2.MinWidthMetric.MaxLevel(float64(angle))

	idx := &cellIndex{
		points: points,
		eps:    epsKm,
		angle:  angle*(1+capSlack) + capSlack,
		level:  level,
		cells:  make(map[s2.CellID][]int),
	}
	for i, p := range points {
		id := s2.CellIDFromLatLng(s2.LatLngFromDegrees(p.lat, p.lon)).Parent(level)
		idx.cells[id] = append(idx.cells[id], i)
	}
	return idx
}

// within returns the ascending indexes of points within epsilon of point i
func (x *cellIndex) within(i int) []int {
	p := x.points[i]
	center := s2.PointFromLatLng(s2.LatLngFromDegrees(p.lat, p.lon))

	// a coverer per call keeps concurrent queries independent
	coverer := &s2.RegionCoverer{MinLevel: x.level, MaxLevel: x.level, MaxCells: 8}
	covering := coverer.Covering(s2.CapFromCenterAngle(center, x.angle))

	var row []int
	for _, cell := range covering {
		for _, j := range x.cells[cell] {
			if j == i {
				continue
			}
			q := x.points[j]
			if utils.Haversine(p.lat, p.lon, q.lat, q.lon) <= x.eps {
				row = append(row, j)
			}
		}
	}
	sort.Ints(row)
	return row
}
