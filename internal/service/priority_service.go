package service

import (
	"context"
	"time"

	"github.com/apex/log"
	geojson "github.com/paulmach/go.geojson"

	"github.com/fixmycity/backend/internal/domain"
	"github.com/fixmycity/backend/internal/metrics"
	"github.com/fixmycity/backend/internal/priority"
)

// ZoneQuery selects the snapshot and clustering for a priority run.
// Nil overrides keep the engine's configured values.
type ZoneQuery struct {
	Top             *int
	IncludeResolved bool
	Epsilon         *float64
	MinPoints       *int
}

// PriorityService feeds repository snapshots to the priority engine
type PriorityService struct {
	repo       ComplaintRepository
	engine     *priority.Engine
	defaultTop int
}

// NewPriorityService creates a new priority service
func NewPriorityService(repo ComplaintRepository, engine *priority.Engine, defaultTop int) *PriorityService {
	return &PriorityService{
		repo:       repo,
		engine:     engine,
		defaultTop: defaultTop,
	}
}

// RankZones returns the most urgent zones, most urgent first
func (s *PriorityService) RankZones(ctx context.Context, q ZoneQuery) ([]domain.PriorityZone, error) {
	complaints, engine, err := s.prepare(ctx, q)
	if err != nil {
		return nil, err
	}

	top := s.defaultTop
	if q.Top != nil {
		top = *q.Top
	}

	start := time.Now()
	zones, err := engine.RankPriorityZones(complaints, top)
	observe("rank", len(complaints), start, err)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"complaints": len(complaints),
		"zones":      len(zones),
		"top":        top,
	}).Debug("ranked priority zones")
	return zones, nil
}

// ZonesGeoJSON returns the ranked zones as a map layer
func (s *PriorityService) ZonesGeoJSON(ctx context.Context, q ZoneQuery) (*geojson.FeatureCollection, error) {
	zones, err := s.RankZones(ctx, q)
	if err != nil {
		return nil, err
	}
	return priority.ZonesGeoJSON(zones), nil
}

// Hotspots labels every complaint in the snapshot with its cluster
func (s *PriorityService) Hotspots(ctx context.Context, q ZoneQuery) (domain.Hotspots, error) {
	complaints, engine, err := s.prepare(ctx, q)
	if err != nil {
		return domain.Hotspots{}, err
	}

	start := time.Now()
	hotspots, err := engine.ClusterComplaints(complaints)
	observe("cluster", len(complaints), start, err)
	return hotspots, err
}

// Scores returns every complaint's priority, most urgent first
func (s *PriorityService) Scores(ctx context.Context, q ZoneQuery) ([]domain.ComplaintScore, error) {
	complaints, engine, err := s.prepare(ctx, q)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	scores, err := engine.ScoreComplaints(complaints)
	observe("score", len(complaints), start, err)
	return scores, err
}

// prepare loads the located complaints and picks the engine for q
func (s *PriorityService) prepare(ctx context.Context, q ZoneQuery) ([]domain.Complaint, *priority.Engine, error) {
	engine := s.engine
	if q.Epsilon != nil || q.MinPoints != nil {
		cfg := s.engine.Config()
		eps, minPoints := cfg.Epsilon, cfg.MinPoints
		if q.Epsilon != nil {
			eps = *q.Epsilon
		}
		if q.MinPoints != nil {
			minPoints = *q.MinPoints
		}
		var err error
		if engine, err = s.engine.WithClustering(eps, minPoints); err != nil {
			return nil, nil, err
		}
	}

	filter := domain.ComplaintFilter{LocatedOnly: true}
	if !q.IncludeResolved {
		filter.Status = domain.StatusUnresolved
	}
	complaints, err := s.repo.ListComplaints(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return complaints, engine, nil
}

func observe(operation string, n int, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.EngineRunsTotal.WithLabelValues(operation, result).Inc()
	metrics.EngineDurationSeconds.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	metrics.ComplaintsScored.Observe(float64(n))
}
