package domain

import "time"

// ComplaintAction records a status change on a complaint
type ComplaintAction struct {
	ID          int64     `json:"id"`
	ComplaintID int64     `json:"complaint_id"`
	Action      Status    `json:"action"`
	Actor       string    `json:"actor,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// StatusChangeRequest is the optional body of resolve and unresolve calls
type StatusChangeRequest struct {
	Actor string `json:"actor"`
	Notes string `json:"notes"`
}
