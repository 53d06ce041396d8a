package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/fixmycity/backend/internal/domain"
	"github.com/fixmycity/backend/internal/metrics"
	"github.com/fixmycity/backend/pkg/utils"
)

// ComplaintService files, lists and resolves complaints
type ComplaintService struct {
	repo     ComplaintRepository
	geocoder *Geocoder
	clock    func() time.Time
}

// NewComplaintService creates a new complaint service
func NewComplaintService(repo ComplaintRepository, geocoder *Geocoder) *ComplaintService {
	return &ComplaintService{
		repo:     repo,
		geocoder: geocoder,
		clock:    time.Now,
	}
}

// Create validates a request, geocodes it when it carries only an area
// name and stores it as unresolved
func (s *ComplaintService) Create(ctx context.Context, req domain.CreateComplaintRequest) (domain.Complaint, error) {
	c, err := s.newComplaint(req)
	if err != nil {
		return domain.Complaint{}, err
	}

	if !c.Located() {
		loc, err := s.geocoder.Geocode(ctx, domain.GeocodeRequest{AreaName: c.AreaName})
		if err != nil {
			return domain.Complaint{}, err
		}
		c.Latitude = domain.Float64(loc.Latitude)
		c.Longitude = domain.Float64(loc.Longitude)
	}

	created, err := s.repo.CreateComplaint(ctx, c)
	if err != nil {
		return domain.Complaint{}, err
	}

	metrics.ComplaintsCreatedTotal.Inc()
	log.WithFields(log.Fields{
		"id":       created.ID,
		"category": created.Category,
		"severity": created.Severity,
	}).Info("complaint filed")

	return created, nil
}

func (s *ComplaintService) newComplaint(req domain.CreateComplaintRequest) (domain.Complaint, error) {
	c := domain.Complaint{
		Category:       strings.TrimSpace(req.Category),
		Severity:       req.Severity,
		Description:    strings.TrimSpace(req.Description),
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		AreaName:       strings.TrimSpace(req.AreaName),
		CreatedAt:      s.clock().UTC(),
		Status:         domain.StatusUnresolved,
		AreaImportance: domain.AreaImportanceNormal,
	}

	switch {
	case c.Category == "":
		return domain.Complaint{}, fmt.Errorf("complaint: category is required: %w", domain.ErrInvalidInput)
	case c.Description == "":
		return domain.Complaint{}, fmt.Errorf("complaint: description is required: %w", domain.ErrInvalidInput)
	case !c.Severity.Valid():
		return domain.Complaint{}, fmt.Errorf("complaint: severity %d outside [%d,%d]: %w",
			c.Severity, domain.MinSeverity, domain.MaxSeverity, domain.ErrInvalidInput)
	case (c.Latitude == nil) != (c.Longitude == nil):
		return domain.Complaint{}, fmt.Errorf("complaint: latitude and longitude must be given together: %w", domain.ErrInvalidInput)
	case !c.Located() && c.AreaName == "":
		return domain.Complaint{}, fmt.Errorf("complaint: coordinates or area_name required: %w", domain.ErrInvalidInput)
	case c.Located() && !utils.ValidCoordinate(*c.Latitude, *c.Longitude):
		return domain.Complaint{}, fmt.Errorf("complaint: coordinates (%v, %v) out of range: %w",
			*c.Latitude, *c.Longitude, domain.ErrInvalidInput)
	}

	if req.AreaImportance != nil {
		if !req.AreaImportance.Valid() {
			return domain.Complaint{}, fmt.Errorf("complaint: area importance %v out of range: %w",
				float64(*req.AreaImportance), domain.ErrInvalidInput)
		}
		c.AreaImportance = *req.AreaImportance
	}

	return c, nil
}

// Get returns a single complaint
func (s *ComplaintService) Get(ctx context.Context, id int64) (domain.Complaint, error) {
	return s.repo.GetComplaint(ctx, id)
}

// List returns complaints matching the filter, newest first
func (s *ComplaintService) List(ctx context.Context, f domain.ComplaintFilter) ([]domain.Complaint, error) {
	if f.Severity != 0 && !f.Severity.Valid() {
		return nil, fmt.Errorf("complaint: severity filter %d out of range: %w", f.Severity, domain.ErrInvalidInput)
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("complaint: unknown status %q: %w", f.Status, domain.ErrInvalidInput)
	}
	return s.repo.ListComplaints(ctx, f)
}

// SetStatus resolves or reopens a complaint, records who did it and why,
// and returns the complaint's new state
func (s *ComplaintService) SetStatus(ctx context.Context, id int64, status domain.Status, req domain.StatusChangeRequest) (domain.Complaint, error) {
	if !status.Valid() {
		return domain.Complaint{}, fmt.Errorf("complaint: unknown status %q: %w", status, domain.ErrInvalidInput)
	}

	action := domain.ComplaintAction{
		ComplaintID: id,
		Action:      status,
		Actor:       strings.TrimSpace(req.Actor),
		Notes:       strings.TrimSpace(req.Notes),
		CreatedAt:   s.clock().UTC(),
	}
	if err := s.repo.UpdateStatus(ctx, action); err != nil {
		return domain.Complaint{}, err
	}

	log.WithFields(log.Fields{"id": id, "status": status, "actor": action.Actor}).Info("complaint status changed")
	return s.repo.GetComplaint(ctx, id)
}

// Actions returns the status history of a complaint, newest first
func (s *ComplaintService) Actions(ctx context.Context, id int64) ([]domain.ComplaintAction, error) {
	return s.repo.ListActions(ctx, id)
}
