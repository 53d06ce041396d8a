package domain

import (
	"context"
	"time"
)

// CountBucket is a single group-by row of the analytics read model
type CountBucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Analytics aggregates complaint counts for the dashboard
type Analytics struct {
	Total        int           `json:"total_complaints"`
	ByCategory   []CountBucket `json:"by_category"`
	ByStatus     []CountBucket `json:"by_status"`
	BySeverity   []CountBucket `json:"by_severity"`
	RecentTrends []CountBucket `json:"recent_trends"`
}

// DashboardData combines analytics with the current top priority zones
type DashboardData struct {
	Analytics     Analytics      `json:"analytics"`
	PriorityZones []PriorityZone `json:"priority_zones"`
	Timestamp     time.Time      `json:"timestamp"`
}

// ComplaintRepository defines the interface for complaint persistence
// This follows the Dependency Inversion Principle - domain defines the interface
type ComplaintRepository interface {
	// CreateComplaint persists a new complaint and returns it with its ID
	CreateComplaint(ctx context.Context, c Complaint) (Complaint, error)

	// GetComplaint returns a complaint or ErrNotFound
	GetComplaint(ctx context.Context, id int64) (Complaint, error)

	// ListComplaints returns complaints matching the filter, newest first
	ListComplaints(ctx context.Context, f ComplaintFilter) ([]Complaint, error)

	// UpdateStatus sets the complaint's status to a.Action and records a in
	// the same operation; ErrNotFound if the complaint does not exist
	UpdateStatus(ctx context.Context, a ComplaintAction) error

	// ListActions returns a complaint's status history, newest first
	ListActions(ctx context.Context, complaintID int64) ([]ComplaintAction, error)

	// GetAnalytics computes the analytics read model; trends cover complaints since the given time
	GetAnalytics(ctx context.Context, since time.Time) (Analytics, error)

	// Health checks database connectivity
	Health(ctx context.Context) error
}
