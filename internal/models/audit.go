package models

import "time"

// AuditEntry records one mutation performed by an authenticated user.
type AuditEntry struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Action       string    `json:"action"`        // create, update, delete, moderate, vote
	ResourceType string    `json:"resource_type"` // post, comment, category, vote
	ResourceID   string    `json:"resource_id"`
	Details      string    `json:"details,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
