// Package priority scores citizen complaints, groups them into hotspots with
// density-based clustering and ranks the most urgent zones.
//
// The engine is a pure computation over a caller-supplied snapshot. It does
// no I/O and keeps no state between calls, so one Engine may serve
// concurrent requests.
package priority

import (
	"time"

	"github.com/fixmycity/backend/internal/domain"
)

// Engine runs scoring, clustering and ranking with a fixed configuration
type Engine struct {
	cfg   Config
	clock func() time.Time
}

// Option customises an Engine
type Option func(*Engine)

// WithClock replaces time.Now, which ages complaints
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// New validates cfg and creates an engine
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg, clock: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns a copy of the engine configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// WithClustering returns an engine sharing this one's weights and clock but
// clustering with a different radius and density
func (e *Engine) WithClustering(epsilon float64, minPoints int) (*Engine, error) {
	cfg := e.cfg
	cfg.Epsilon = epsilon
	cfg.MinPoints = minPoints
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, clock: e.clock}, nil
}

// ComputeComplaintScore scores a single complaint within a cluster of clusterSize
func (e *Engine) ComputeComplaintScore(c domain.Complaint, clusterSize int) (float64, error) {
	return ComputeComplaintScore(c, clusterSize, e.cfg.Weights, e.clock())
}

// ClusterComplaints labels every complaint with its hotspot
func (e *Engine) ClusterComplaints(complaints []domain.Complaint) (domain.Hotspots, error) {
	return ClusterComplaints(complaints, e.cfg.clusterOptions())
}

// RankPriorityZones returns at most top zones, most urgent first. Fewer
// clusters than top is not an error.
func (e *Engine) RankPriorityZones(complaints []domain.Complaint, top int) ([]domain.PriorityZone, error) {
	return rankZones(complaints, top, e.cfg, e.clock())
}

// ScoreComplaints scores every complaint with the size of its cluster, most urgent first
func (e *Engine) ScoreComplaints(complaints []domain.Complaint) ([]domain.ComplaintScore, error) {
	return scoreAll(complaints, e.cfg, e.clock())
}
