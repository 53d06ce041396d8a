package postgres

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/fixmycity/backend/internal/domain"
)

// MockRepository implements domain.ComplaintRepository in memory for testing/demo mode
type MockRepository struct {
	mu         sync.RWMutex
	complaints map[int64]domain.Complaint
	actions    []domain.ComplaintAction
	nextID     int64
}

// NewMockRepository creates a mock repository holding the given complaints
func NewMockRepository(seed ...domain.Complaint) *MockRepository {
	r := &MockRepository{complaints: make(map[int64]domain.Complaint, len(seed))}
	for _, c := range seed {
		r.complaints[c.ID] = c
		if c.ID > r.nextID {
			r.nextID = c.ID
		}
	}
	return r
}

// CreateComplaint stores a copy and assigns the next ID
func (r *MockRepository) CreateComplaint(ctx context.Context, c domain.Complaint) (domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	c.ID = r.nextID
	r.complaints[c.ID] = c
	return c, nil
}

// GetComplaint returns a stored complaint
func (r *MockRepository) GetComplaint(ctx context.Context, id int64) (domain.Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.complaints[id]
	if !ok {
		return domain.Complaint{}, fmt.Errorf("mock: complaint %d: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

// ListComplaints filters in memory, newest first
func (r *MockRepository) ListComplaints(ctx context.Context, f domain.ComplaintFilter) ([]domain.Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := []domain.Complaint{}
	for _, c := range r.complaints {
		if matches(c, f) {
			results = append(results, c)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if !results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].CreatedAt.After(results[j].CreatedAt)
		}
		return results[i].ID > results[j].ID
	})
	return results, nil
}

func matches(c domain.Complaint, f domain.ComplaintFilter) bool {
	switch {
	case f.Category != "" && c.Category != f.Category:
		return false
	case f.Severity != 0 && c.Severity != f.Severity:
		return false
	case f.Status != "" && c.Status != f.Status:
		return false
	case !f.From.IsZero() && c.CreatedAt.Before(f.From):
		return false
	case !f.To.IsZero() && c.CreatedAt.After(f.To):
		return false
	case f.LocatedOnly && !c.Located():
		return false
	}
	return true
}

// UpdateStatus changes a stored complaint's status and logs the action
func (r *MockRepository) UpdateStatus(ctx context.Context, a domain.ComplaintAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.complaints[a.ComplaintID]
	if !ok {
		return fmt.Errorf("mock: complaint %d: %w", a.ComplaintID, domain.ErrNotFound)
	}
	c.Status = a.Action
	r.complaints[a.ComplaintID] = c

	a.ID = int64(len(r.actions) + 1)
	r.actions = append(r.actions, a)
	return nil
}

// ListActions returns a complaint's actions, newest first
func (r *MockRepository) ListActions(ctx context.Context, complaintID int64) ([]domain.ComplaintAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.complaints[complaintID]; !ok {
		return nil, fmt.Errorf("mock: complaint %d: %w", complaintID, domain.ErrNotFound)
	}

	results := []domain.ComplaintAction{}
	for _, a := range r.actions {
		if a.ComplaintID == complaintID {
			results = append(results, a)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if !results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].CreatedAt.After(results[j].CreatedAt)
		}
		return results[i].ID > results[j].ID
	})
	return results, nil
}

// GetAnalytics computes the same read model as the SQL queries
func (r *MockRepository) GetAnalytics(ctx context.Context, since time.Time) (domain.Analytics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byCategory := map[string]int{}
	byStatus := map[string]int{}
	bySeverity := map[string]int{}
	byDay := map[string]int{}
	for _, c := range r.complaints {
		byCategory[c.Category]++
		byStatus[string(c.Status)]++
		bySeverity[strconv.Itoa(int(c.Severity))]++
		if !c.CreatedAt.Before(since) {
			byDay[c.CreatedAt.UTC().Format("2006-01-02")]++
		}
	}

	a := domain.Analytics{
		Total:        len(r.complaints),
		ByCategory:   toBuckets(byCategory),
		ByStatus:     toBuckets(byStatus),
		BySeverity:   toBuckets(bySeverity),
		RecentTrends: toBuckets(byDay),
	}

	sort.SliceStable(a.ByCategory, func(i, j int) bool { return a.ByCategory[i].Count > a.ByCategory[j].Count })
	sort.SliceStable(a.BySeverity, func(i, j int) bool { return a.BySeverity[i].Key > a.BySeverity[j].Key })
	return a, nil
}

// toBuckets returns buckets sorted by key
func toBuckets(m map[string]int) []domain.CountBucket {
	out := make([]domain.CountBucket, 0, len(m))
	for k, v := range m {
		out = append(out, domain.CountBucket{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}
