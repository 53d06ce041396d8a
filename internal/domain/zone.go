package domain

// NoiseLabel marks complaints that belong to no dense cluster
const NoiseLabel = -1

// PriorityZone is a hotspot of complaints ranked by aggregate urgency
type PriorityZone struct {
	Rank              int            `json:"rank"`
	Label             int            `json:"cluster"`
	Latitude          float64        `json:"latitude"`
	Longitude         float64        `json:"longitude"`
	ComplaintCount    int            `json:"complaint_count"`
	PriorityScore     float64        `json:"priority_score"`
	MaxSeverity       Severity       `json:"severity"`
	MaxAreaImportance AreaImportance `json:"area_importance"`
	OldestAgeDays     int            `json:"days_unresolved"`
	ComplaintIDs      []int64        `json:"complaint_ids"`
}

// ComplaintScore is the priority of a single complaint within its cluster
type ComplaintScore struct {
	ID          int64   `json:"id"`
	Label       int     `json:"cluster"`
	ClusterSize int     `json:"cluster_size"`
	Score       float64 `json:"priority_score"`
}

// Hotspots maps every complaint to its cluster label
type Hotspots struct {
	Labels   map[int64]int `json:"labels"`
	Clusters int           `json:"clusters"`
	Noise    int           `json:"noise"`
}
