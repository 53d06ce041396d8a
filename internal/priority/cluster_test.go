package priority

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixmycity/backend/internal/domain"
)

// cityFixture has two tight groups a few km apart and one isolated complaint
func cityFixture() []domain.Complaint {
	return []domain.Complaint{
		complaint(1, 13.0827, 80.2707, 3, 1, 2),
		complaint(2, 13.0837, 80.2707, 2, 1, 0),
		complaint(3, 13.0827, 80.2717, 4, 2, 10),
		complaint(4, 13.0400, 80.2790, 4, 3, 1),
		complaint(5, 13.0405, 80.2790, 4, 3, 1),
		complaint(6, 13.1500, 80.2000, 5, 3, 30),
	}
}

func defaultOptions() ClusterOptions {
	return DefaultConfig().clusterOptions()
}

func TestClusterComplaints_Empty(t *testing.T) {
	got, err := ClusterComplaints(nil, defaultOptions())
	require.NoError(t, err)
	assert.Empty(t, got.Labels)
	assert.Equal(t, 0, got.Clusters)
	assert.Equal(t, 0, got.Noise)
}

func TestClusterComplaints_Groups(t *testing.T) {
	got, err := ClusterComplaints(cityFixture(), defaultOptions())
	require.NoError(t, err)

	assert.Equal(t, map[int64]int{1: 0, 2: 0, 3: 0, 4: 1, 5: 1, 6: domain.NoiseLabel}, got.Labels)
	assert.Equal(t, 2, got.Clusters)
	assert.Equal(t, 1, got.Noise)
}

func TestClusterComplaints_OrderInvariant(t *testing.T) {
	want, err := ClusterComplaints(cityFixture(), defaultOptions())
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		in := cityFixture()
		rng.Shuffle(len(in), func(a, b int) { in[a], in[b] = in[b], in[a] })

		got, err := ClusterComplaints(in, defaultOptions())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestClusterComplaints_BorderPoints(t *testing.T) {
	// a chain 0-1-2-3 one degree apart; only the inner two are core with minPoints=2
	in := []domain.Complaint{
		complaint(10, 0, 0, 1, 1, 0),
		complaint(11, 1, 0, 1, 1, 0),
		complaint(12, 2, 0, 1, 1, 0),
		complaint(13, 3, 0, 1, 1, 0),
		complaint(14, 10, 0, 1, 1, 0),
	}
	opts := ClusterOptions{Epsilon: 1, MinPoints: 2, Metric: MetricPlanar}

	got, err := ClusterComplaints(in, opts)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{10: 0, 11: 0, 12: 0, 13: 0, 14: domain.NoiseLabel}, got.Labels)
	assert.Equal(t, 1, got.Clusters)
}

func TestClusterComplaints_MinPointsCountsOthers(t *testing.T) {
	in := []domain.Complaint{
		complaint(1, 0, 0, 1, 1, 0),
		complaint(2, 0.5, 0, 1, 1, 0),
	}

	got, err := ClusterComplaints(in, ClusterOptions{Epsilon: 1, MinPoints: 1, Metric: MetricPlanar})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Clusters)

	got, err = ClusterComplaints(in, ClusterOptions{Epsilon: 1, MinPoints: 2, Metric: MetricPlanar})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Clusters)
	assert.Equal(t, 2, got.Noise)
}

func TestClusterComplaints_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name string
		opts ClusterOptions
	}{
		{"negative epsilon", ClusterOptions{Epsilon: -1, MinPoints: 1, Metric: MetricGreatCircle}},
		{"zero epsilon", ClusterOptions{Epsilon: 0, MinPoints: 1, Metric: MetricGreatCircle}},
		{"nan epsilon", ClusterOptions{Epsilon: math.NaN(), MinPoints: 1, Metric: MetricGreatCircle}},
		{"zero minPoints", ClusterOptions{Epsilon: 1, MinPoints: 0, Metric: MetricGreatCircle}},
		{"unknown metric", ClusterOptions{Epsilon: 1, MinPoints: 1, Metric: "manhattan"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ClusterComplaints(cityFixture(), tt.opts)
			assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
		})
	}
}

func TestClusterComplaints_MalformedRecords(t *testing.T) {
	missing := complaint(7, 0, 0, 1, 1, 0)
	missing.Latitude = nil

	nan := complaint(8, 0, 0, 1, 1, 0)
	nan.Longitude = domain.Float64(math.NaN())

	outOfBounds := complaint(9, 95, 0, 1, 1, 0)

	for _, bad := range []domain.Complaint{missing, nan, outOfBounds} {
		in := append(cityFixture(), bad)
		_, err := ClusterComplaints(in, defaultOptions())
		assert.ErrorIs(t, err, domain.ErrMalformedRecord, "complaint %d", bad.ID)
	}
}

func TestClusterComplaints_DuplicateIDs(t *testing.T) {
	in := append(cityFixture(), complaint(1, 0, 0, 1, 1, 0))
	_, err := ClusterComplaints(in, defaultOptions())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func randomComplaints(n int, seed int64) []domain.Complaint {
	rng := rand.New(rand.NewSource(seed))
	out := make([]domain.Complaint, n)
	for i := range out {
		lat := 13.05 + rng.Float64()*0.06
		lon := 80.22 + rng.Float64()*0.06
		out[i] = complaint(int64(i+1), lat, lon, domain.Severity(1+rng.Intn(5)), domain.AreaImportanceNormal, rng.Intn(40))
	}
	return out
}

func TestClusterComplaints_IndexMatchesNaiveScan(t *testing.T) {
	in := randomComplaints(400, 42)

	naive := ClusterOptions{Epsilon: 0.5, MinPoints: 2, Metric: MetricGreatCircle, Workers: 1}
	want, err := ClusterComplaints(in, naive)
	require.NoError(t, err)
	require.Greater(t, want.Clusters, 0)

	for _, workers := range []int{1, 3, 8} {
		indexed := naive
		indexed.Workers = workers
		indexed.IndexThreshold = 1

		got, err := ClusterComplaints(in, indexed)
		require.NoError(t, err)
		assert.Equal(t, want, got, "workers=%d", workers)
	}
}

func TestClusterComplaints_ParallelMatchesSequential(t *testing.T) {
	in := randomComplaints(150, 9)

	seq := ClusterOptions{Epsilon: 0.004, MinPoints: 3, Metric: MetricPlanar, Workers: 1}
	want, err := ClusterComplaints(in, seq)
	require.NoError(t, err)

	par := seq
	par.Workers = 16
	got, err := ClusterComplaints(in, par)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCellIndex_WithinMatchesNaive(t *testing.T) {
	in := randomComplaints(300, 3)
	sorted, err := sortByID(in)
	require.NoError(t, err)
	points, err := toPoints(sorted)
	require.NoError(t, err)

	opts := ClusterOptions{Epsilon: 0.8, MinPoints: 1, Metric: MetricGreatCircle}
	naive := naiveSearch(points, opts)
	idx := newCellIndex(points, opts.Epsilon)

	for i := range points {
		assert.Equal(t, naive(i), idx.within(i), "point %d", i)
	}
}
