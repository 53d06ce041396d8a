package priority

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixmycity/backend/internal/domain"
)

func newTestEngine(t *testing.T, mutate func(*Config)) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := New(cfg, WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	return e
}

func TestRankPriorityZones_SumAggregation(t *testing.T) {
	e := newTestEngine(t, nil)

	zones, err := e.RankPriorityZones(cityFixture(), 10)
	require.NoError(t, err)
	require.Len(t, zones, 3)

	// cluster {1,2,3}: (6+9+3+2) + (6+6+0+2) + (6+12+15+4)
	assert.Equal(t, 1, zones[0].Rank)
	assert.Equal(t, 0, zones[0].Label)
	assert.Equal(t, 71.0, zones[0].PriorityScore)
	assert.Equal(t, []int64{1, 2, 3}, zones[0].ComplaintIDs)
	assert.Equal(t, 3, zones[0].ComplaintCount)
	assert.Equal(t, domain.Severity(4), zones[0].MaxSeverity)
	assert.Equal(t, domain.AreaImportanceHigh, zones[0].MaxAreaImportance)
	assert.Equal(t, 10, zones[0].OldestAgeDays)

	// noise singleton {6}: 2+15+45+6
	assert.Equal(t, 2, zones[1].Rank)
	assert.Equal(t, domain.NoiseLabel, zones[1].Label)
	assert.Equal(t, 68.0, zones[1].PriorityScore)
	assert.Equal(t, 13.15, zones[1].Latitude)
	assert.Equal(t, 80.2, zones[1].Longitude)

	// cluster {4,5}: 2 × (4+12+1.5+6)
	assert.Equal(t, 3, zones[2].Rank)
	assert.Equal(t, 47.0, zones[2].PriorityScore)
	assert.Equal(t, []int64{4, 5}, zones[2].ComplaintIDs)
}

func TestRankPriorityZones_MeanAggregation(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.Aggregation = AggregateMean })

	zones, err := e.RankPriorityZones(cityFixture(), 10)
	require.NoError(t, err)
	require.Len(t, zones, 3)

	assert.Equal(t, []int64{6}, zones[0].ComplaintIDs)
	assert.Equal(t, 68.0, zones[0].PriorityScore)
	assert.Equal(t, 23.67, zones[1].PriorityScore)
	assert.Equal(t, 23.5, zones[2].PriorityScore)
}

func TestRankPriorityZones_NoiseExcluded(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.Noise = NoiseExcluded })

	zones, err := e.RankPriorityZones(cityFixture(), 10)
	require.NoError(t, err)
	require.Len(t, zones, 2)
	assert.Equal(t, []int64{1, 2, 3}, zones[0].ComplaintIDs)
	assert.Equal(t, []int64{4, 5}, zones[1].ComplaintIDs)
}

func TestRankPriorityZones_Truncates(t *testing.T) {
	e := newTestEngine(t, nil)

	zones, err := e.RankPriorityZones(cityFixture(), 2)
	require.NoError(t, err)
	require.Len(t, zones, 2)
	assert.Equal(t, 71.0, zones[0].PriorityScore)
	assert.Equal(t, 68.0, zones[1].PriorityScore)
}

func TestRankPriorityZones_FewerClustersThanTop(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.Noise = NoiseExcluded })

	in := cityFixture()[:3]
	zones, err := e.RankPriorityZones(in, 3)
	require.NoError(t, err)
	assert.Len(t, zones, 1)
}

func TestRankPriorityZones_Empty(t *testing.T) {
	e := newTestEngine(t, nil)

	zones, err := e.RankPriorityZones(nil, 5)
	require.NoError(t, err)
	assert.Empty(t, zones)
}

func TestRankPriorityZones_InvalidTop(t *testing.T) {
	e := newTestEngine(t, nil)

	for _, top := range []int{0, -3} {
		_, err := e.RankPriorityZones(cityFixture(), top)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "top=%d", top)
	}
}

func TestRankPriorityZones_InvalidSeverityInExcludedNoise(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.Noise = NoiseExcluded })

	in := cityFixture()
	in[5].Severity = 6
	_, err := e.RankPriorityZones(in, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRankPriorityZones_TieBreaks(t *testing.T) {
	e := newTestEngine(t, func(c *Config) {
		c.Weights = Weights{Severity: 1}
		c.Metric = MetricPlanar
		c.Epsilon = 0.1
	})

	in := []domain.Complaint{
		// pair at lat 5, total 1+1
		complaint(1, 5, 0, 1, 1, 0),
		complaint(2, 5.05, 0, 1, 1, 0),
		// singletons scoring 2, the southern one ranks first
		complaint(3, 9, 0, 2, 1, 0),
		complaint(4, -9, 0, 2, 1, 0),
	}

	zones, err := e.RankPriorityZones(in, 10)
	require.NoError(t, err)
	require.Len(t, zones, 3)

	assert.Equal(t, []int64{1, 2}, zones[0].ComplaintIDs)
	assert.Equal(t, []int64{4}, zones[1].ComplaintIDs)
	assert.Equal(t, []int64{3}, zones[2].ComplaintIDs)
}

func TestRankPriorityZones_Deterministic(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.MinPoints = 2 })
	in := randomComplaints(250, 11)

	first, err := e.RankPriorityZones(in, 15)
	require.NoError(t, err)
	second, err := e.RankPriorityZones(in, 15)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRankPriorityZones_DoesNotMutateInput(t *testing.T) {
	e := newTestEngine(t, nil)

	in := cityFixture()
	in[0], in[5] = in[5], in[0]
	before := make([]domain.Complaint, len(in))
	copy(before, in)

	_, err := e.RankPriorityZones(in, 3)
	require.NoError(t, err)
	assert.Equal(t, before, in)
}

func TestRankPriorityZones_FailureDoesNotMutateInput(t *testing.T) {
	e := newTestEngine(t, nil)

	tests := []struct {
		name   string
		top    int
		mutate func([]domain.Complaint)
		want   error
	}{
		{"zero top", 0, func([]domain.Complaint) {}, domain.ErrInvalidInput},
		{"severity out of range", 3, func(in []domain.Complaint) { in[2].Severity = 6 }, domain.ErrInvalidInput},
		{"missing latitude", 3, func(in []domain.Complaint) { in[4].Latitude = nil }, domain.ErrMalformedRecord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := cityFixture()
			in[0], in[5] = in[5], in[0]
			tt.mutate(in)
			before := make([]domain.Complaint, len(in))
			copy(before, in)
			coords := make([][2]float64, len(in))
			for i, c := range in {
				if c.Located() {
					coords[i] = [2]float64{*c.Latitude, *c.Longitude}
				}
			}

			_, err := e.RankPriorityZones(in, tt.top)
			require.ErrorIs(t, err, tt.want)

			assert.Equal(t, before, in)
			for i, c := range in {
				if c.Located() {
					assert.Equal(t, coords[i], [2]float64{*c.Latitude, *c.Longitude})
				}
			}
		})
	}
}

func TestRankPriorityZones_GreatCircleCentroid(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.Epsilon = 50 })

	in := []domain.Complaint{
		complaint(1, 0, 179.9, 1, 1, 0),
		complaint(2, 0, -179.9, 1, 1, 0),
	}
	zones, err := e.RankPriorityZones(in, 1)
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.InDelta(t, 0, zones[0].Latitude, 1e-9)
	assert.InDelta(t, 180, math.Abs(zones[0].Longitude), 1e-9)
}

func TestRankPriorityZones_PlanarCentroid(t *testing.T) {
	e := newTestEngine(t, func(c *Config) {
		c.Metric = MetricPlanar
		c.Epsilon = 1
	})

	in := []domain.Complaint{
		complaint(1, 1, 2, 1, 1, 0),
		complaint(2, 1.5, 2.5, 1, 1, 0),
	}
	zones, err := e.RankPriorityZones(in, 1)
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.InDelta(t, 1.25, zones[0].Latitude, 1e-12)
	assert.InDelta(t, 2.25, zones[0].Longitude, 1e-12)
}

func TestScoreComplaints(t *testing.T) {
	e := newTestEngine(t, nil)

	scores, err := e.ScoreComplaints(cityFixture())
	require.NoError(t, err)
	require.Len(t, scores, 6)

	assert.Equal(t, domain.ComplaintScore{ID: 6, Label: domain.NoiseLabel, ClusterSize: 1, Score: 68}, scores[0])
	assert.Equal(t, domain.ComplaintScore{ID: 3, Label: 0, ClusterSize: 3, Score: 37}, scores[1])
	assert.Equal(t, domain.ComplaintScore{ID: 4, Label: 1, ClusterSize: 2, Score: 23.5}, scores[2])
	assert.Equal(t, domain.ComplaintScore{ID: 5, Label: 1, ClusterSize: 2, Score: 23.5}, scores[3])
	assert.Equal(t, domain.ComplaintScore{ID: 1, Label: 0, ClusterSize: 3, Score: 20}, scores[4])
	assert.Equal(t, domain.ComplaintScore{ID: 2, Label: 0, ClusterSize: 3, Score: 14}, scores[5])
}

func TestEngine_WithClustering(t *testing.T) {
	e := newTestEngine(t, nil)

	_, err := e.WithClustering(-1, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	wide, err := e.WithClustering(15, 1)
	require.NoError(t, err)
	hs, err := wide.ClusterComplaints(cityFixture())
	require.NoError(t, err)
	assert.Equal(t, 1, hs.Clusters)

	// the receiver keeps its radius
	assert.Equal(t, DefaultEpsilonKm, e.Config().Epsilon)
}
