package priority

import (
	"fmt"
	"math"
	"strings"

	"github.com/fixmycity/backend/internal/domain"
)

// Formula weights: score = size×2 + severity×3 + ageDays×1.5 + areaImportance×2
const (
	DefaultClusterSizeWeight    = 2.0
	DefaultSeverityWeight       = 3.0
	DefaultAgeWeight            = 1.5
	DefaultAreaImportanceWeight = 2.0
)

// Clustering defaults match the heatmap page: 0.5 km radius, one neighbour
const (
	DefaultEpsilonKm      = 0.5
	DefaultMinPoints      = 1
	DefaultIndexThreshold = 256
)

// Weights are the coefficients of the priority formula
type Weights struct {
	ClusterSize    float64 `json:"cluster_size"`
	Severity       float64 `json:"severity"`
	Age            float64 `json:"age"`
	AreaImportance float64 `json:"area_importance"`
}

// DefaultWeights returns the stock formula coefficients
func DefaultWeights() Weights {
	return Weights{
		ClusterSize:    DefaultClusterSizeWeight,
		Severity:       DefaultSeverityWeight,
		Age:            DefaultAgeWeight,
		AreaImportance: DefaultAreaImportanceWeight,
	}
}

func (w Weights) validate() error {
	weights := []struct {
		name  string
		value float64
	}{
		{"cluster_size", w.ClusterSize},
		{"severity", w.Severity},
		{"age", w.Age},
		{"area_importance", w.AreaImportance},
	}
	for _, wt := range weights {
		if wt.value < 0 || math.IsNaN(wt.value) || math.IsInf(wt.value, 0) {
			return fmt.Errorf("priority: weight %s=%g must be a finite non-negative number: %w", wt.name, wt.value, domain.ErrInvalidConfiguration)
		}
	}
	return nil
}

// Metric selects how distances between complaints are measured
type Metric string

const (
	// MetricGreatCircle measures haversine distance; epsilon is in kilometers
	MetricGreatCircle Metric = "great_circle"
	// MetricPlanar measures euclidean distance on raw lat/lon; epsilon is in degrees
	MetricPlanar Metric = "planar"
)

// NoisePolicy decides what happens to complaints outside every dense cluster
type NoisePolicy string

const (
	// NoiseAsSingleton ranks each noise complaint as its own one-member zone
	NoiseAsSingleton NoisePolicy = "singleton"
	// NoiseExcluded drops noise complaints from the ranking
	NoiseExcluded NoisePolicy = "exclude"
)

// Aggregation combines member scores into a zone score
type Aggregation string

const (
	AggregateSum  Aggregation = "sum"
	AggregateMean Aggregation = "mean"
)

// ParseMetric maps a configuration string to a Metric
func ParseMetric(s string) (Metric, error) {
	switch Metric(strings.ToLower(strings.TrimSpace(s))) {
	case MetricGreatCircle, "haversine", "":
		return MetricGreatCircle, nil
	case MetricPlanar, "euclidean":
		return MetricPlanar, nil
	}
	return "", fmt.Errorf("priority: unknown metric %q: %w", s, domain.ErrInvalidConfiguration)
}

// ParseNoisePolicy maps a configuration string to a NoisePolicy
func ParseNoisePolicy(s string) (NoisePolicy, error) {
	switch NoisePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case NoiseAsSingleton, "":
		return NoiseAsSingleton, nil
	case NoiseExcluded, "excluded":
		return NoiseExcluded, nil
	}
	return "", fmt.Errorf("priority: unknown noise policy %q: %w", s, domain.ErrInvalidConfiguration)
}

// ParseAggregation maps a configuration string to an Aggregation
func ParseAggregation(s string) (Aggregation, error) {
	switch Aggregation(strings.ToLower(strings.TrimSpace(s))) {
	case AggregateSum, "":
		return AggregateSum, nil
	case AggregateMean, "avg", "average":
		return AggregateMean, nil
	}
	return "", fmt.Errorf("priority: unknown aggregation %q: %w", s, domain.ErrInvalidConfiguration)
}

// ClusterOptions parameterise density-based clustering
type ClusterOptions struct {
	Epsilon   float64
	MinPoints int
	Metric    Metric

	// Workers bounds the neighbour search pool; <= 0 means GOMAXPROCS
	Workers int
	// IndexThreshold is the input size from which great-circle searches use an
	// s2 cell index; <= 0 disables the index
	IndexThreshold int
}

// Validate rejects settings DBSCAN cannot run with
func (o ClusterOptions) Validate() error {
	if !(o.Epsilon > 0) || math.IsInf(o.Epsilon, 0) {
		return fmt.Errorf("priority: epsilon %g must be positive: %w", o.Epsilon, domain.ErrInvalidConfiguration)
	}
	if o.MinPoints < 1 {
		return fmt.Errorf("priority: minPoints %d must be at least 1: %w", o.MinPoints, domain.ErrInvalidConfiguration)
	}
	if o.Metric != MetricGreatCircle && o.Metric != MetricPlanar {
		return fmt.Errorf("priority: unknown metric %q: %w", o.Metric, domain.ErrInvalidConfiguration)
	}
	return nil
}

// Config is the full engine configuration
type Config struct {
	Weights        Weights
	Epsilon        float64
	MinPoints      int
	Metric         Metric
	Noise          NoisePolicy
	Aggregation    Aggregation
	Workers        int
	IndexThreshold int
}

// DefaultConfig returns the configuration the API runs with unless overridden
func DefaultConfig() Config {
	return Config{
		Weights:        DefaultWeights(),
		Epsilon:        DefaultEpsilonKm,
		MinPoints:      DefaultMinPoints,
		Metric:         MetricGreatCircle,
		Noise:          NoiseAsSingleton,
		Aggregation:    AggregateSum,
		IndexThreshold: DefaultIndexThreshold,
	}
}

// Validate checks every field and reports the first problem as ErrInvalidConfiguration
func (c Config) Validate() error {
	if err := c.Weights.validate(); err != nil {
		return err
	}
	if err := c.clusterOptions().Validate(); err != nil {
		return err
	}
	if c.Noise != NoiseAsSingleton && c.Noise != NoiseExcluded {
		return fmt.Errorf("priority: unknown noise policy %q: %w", c.Noise, domain.ErrInvalidConfiguration)
	}
	if c.Aggregation != AggregateSum && c.Aggregation != AggregateMean {
		return fmt.Errorf("priority: unknown aggregation %q: %w", c.Aggregation, domain.ErrInvalidConfiguration)
	}
	return nil
}

func (c Config) clusterOptions() ClusterOptions {
	return ClusterOptions{
		Epsilon:        c.Epsilon,
		MinPoints:      c.MinPoints,
		Metric:         c.Metric,
		Workers:        c.Workers,
		IndexThreshold: c.IndexThreshold,
	}
}
