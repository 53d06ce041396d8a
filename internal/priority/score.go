package priority

import (
	"fmt"
	"time"

	"github.com/fixmycity/backend/internal/domain"
)

const day = 24 * time.Hour

// AgeInDays returns the whole days between createdAt and now, never negative
func AgeInDays(createdAt, now time.Time) int {
	age := now.Sub(createdAt)
	if age < 0 {
		return 0
	}
	return int(age / day)
}

// ComputeComplaintScore scores one complaint given the size of its cluster
// (at least 1, the complaint itself included). Resolved complaints are scored
// like any other; callers filter them out beforehand if needed.
func ComputeComplaintScore(c domain.Complaint, clusterSize int, w Weights, now time.Time) (float64, error) {
	if clusterSize < 1 {
		return 0, fmt.Errorf("priority: cluster size %d must be at least 1: %w", clusterSize, domain.ErrInvalidInput)
	}
	if err := validateRecord(c); err != nil {
		return 0, err
	}

	age := AgeInDays(c.CreatedAt, now)

	return float64(clusterSize)*w.ClusterSize +
		float64(c.Severity)*w.Severity +
		float64(age)*w.Age +
		float64(c.AreaImportance)*w.AreaImportance, nil
}

// validateRecord checks the scoring inputs of a complaint
func validateRecord(c domain.Complaint) error {
	if !c.Severity.Valid() {
		return fmt.Errorf("priority: complaint %d severity %d outside [%d,%d]: %w",
			c.ID, c.Severity, domain.MinSeverity, domain.MaxSeverity, domain.ErrInvalidInput)
	}
	if !c.AreaImportance.Valid() {
		return fmt.Errorf("priority: complaint %d area importance %g outside [%g,%g]: %w",
			c.ID, c.AreaImportance, domain.MinAreaImportance, domain.MaxAreaImportance, domain.ErrInvalidInput)
	}
	if c.CreatedAt.IsZero() {
		return fmt.Errorf("priority: complaint %d has no creation time: %w", c.ID, domain.ErrMalformedRecord)
	}
	return nil
}
