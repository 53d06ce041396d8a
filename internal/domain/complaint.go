package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Severity is the ordinal urgency a citizen assigns to a complaint
type Severity int

const (
	SeverityLow      Severity = 1
	SeverityMedium   Severity = 2
	SeverityHigh     Severity = 3
	SeverityCritical Severity = 4

	MinSeverity Severity = 1
	MaxSeverity Severity = 5
)

var severityWords = map[string]Severity{
	"low":      SeverityLow,
	"medium":   SeverityMedium,
	"high":     SeverityHigh,
	"critical": SeverityCritical,
}

// ParseSeverity accepts either a word (low, medium, high, critical) or a number in range
func ParseSeverity(s string) (Severity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if sev, ok := severityWords[s]; ok {
		return sev, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("domain: unknown severity %q: %w", s, ErrInvalidInput)
	}
	sev := Severity(n)
	if !sev.Valid() {
		return 0, fmt.Errorf("domain: severity %d outside [%d,%d]: %w", n, MinSeverity, MaxSeverity, ErrInvalidInput)
	}
	return sev, nil
}

// Valid reports whether s lies within [MinSeverity, MaxSeverity]
func (s Severity) Valid() bool {
	return s >= MinSeverity && s <= MaxSeverity
}

// UnmarshalJSON accepts numbers as well as severity words
func (s *Severity) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*s = Severity(n)
		return nil
	}
	var word string
	if err := json.Unmarshal(b, &word); err != nil {
		return fmt.Errorf("domain: severity must be a number or string: %w", ErrInvalidInput)
	}
	parsed, err := ParseSeverity(word)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// AreaImportance weighs how close a complaint is to schools, hospitals or
// other critical infrastructure
type AreaImportance float64

const (
	AreaImportanceLow      AreaImportance = 0.5
	AreaImportanceNormal   AreaImportance = 1
	AreaImportanceHigh     AreaImportance = 2
	AreaImportanceCritical AreaImportance = 3

	MinAreaImportance = AreaImportanceLow
	MaxAreaImportance = AreaImportanceCritical
)

var areaImportanceWords = map[string]AreaImportance{
	"low":      AreaImportanceLow,
	"normal":   AreaImportanceNormal,
	"high":     AreaImportanceHigh,
	"critical": AreaImportanceCritical,
}

// ParseAreaImportance accepts a word (low, normal, high, critical) or a number in range
func ParseAreaImportance(s string) (AreaImportance, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if ai, ok := areaImportanceWords[s]; ok {
		return ai, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("domain: unknown area importance %q: %w", s, ErrInvalidInput)
	}
	ai := AreaImportance(f)
	if !ai.Valid() {
		return 0, fmt.Errorf("domain: area importance %g outside [%g,%g]: %w", f, MinAreaImportance, MaxAreaImportance, ErrInvalidInput)
	}
	return ai, nil
}

// Valid reports whether a lies within [MinAreaImportance, MaxAreaImportance]
func (a AreaImportance) Valid() bool {
	return a >= MinAreaImportance && a <= MaxAreaImportance
}

// Label returns the word for a known importance level, or the number otherwise
func (a AreaImportance) Label() string {
	for word, v := range areaImportanceWords {
		if v == a {
			return word
		}
	}
	return strconv.FormatFloat(float64(a), 'g', -1, 64)
}

// UnmarshalJSON accepts numbers as well as importance words
func (a *AreaImportance) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*a = AreaImportance(f)
		return nil
	}
	var word string
	if err := json.Unmarshal(b, &word); err != nil {
		return fmt.Errorf("domain: area_importance must be a number or string: %w", ErrInvalidInput)
	}
	parsed, err := ParseAreaImportance(word)
	if err != nil {
		// unknown words fall back to normal, like the submission form does
		parsed = AreaImportanceNormal
	}
	*a = parsed
	return nil
}

// Status is the lifecycle state of a complaint
type Status string

const (
	StatusUnresolved Status = "unresolved"
	StatusResolved   Status = "resolved"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	return s == StatusUnresolved || s == StatusResolved
}

// Complaint is a citizen report about a problem at a location
type Complaint struct {
	ID             int64          `json:"id"`
	Category       string         `json:"category"`
	Severity       Severity       `json:"severity"`
	Description    string         `json:"description"`
	Latitude       *float64       `json:"latitude"`
	Longitude      *float64       `json:"longitude"`
	AreaName       string         `json:"area_name"`
	CreatedAt      time.Time      `json:"created_at"`
	Status         Status         `json:"status"`
	AreaImportance AreaImportance `json:"area_importance"`
}

// Located reports whether the complaint carries both coordinates
func (c Complaint) Located() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// Resolved reports whether an officer closed the complaint
func (c Complaint) Resolved() bool {
	return c.Status == StatusResolved
}

// ComplaintFilter narrows complaint listings. Zero values mean "no filter".
type ComplaintFilter struct {
	Category    string
	Severity    Severity
	Status      Status
	From        time.Time
	To          time.Time
	LocatedOnly bool
}

// CreateComplaintRequest is the payload for filing a complaint
type CreateComplaintRequest struct {
	Category       string          `json:"category"`
	Severity       Severity        `json:"severity"`
	Description    string          `json:"description"`
	Latitude       *float64        `json:"latitude,omitempty"`
	Longitude      *float64        `json:"longitude,omitempty"`
	AreaName       string          `json:"area_name,omitempty"`
	AreaImportance *AreaImportance `json:"area_importance,omitempty"`
}

// Float64 returns a pointer to v, for building located complaints
func Float64(v float64) *float64 {
	return &v
}
