package models

import "time"

// AuditLog records an admin mutation (role change, deletion). Written
// asynchronously; best effort.
type AuditLog struct {
	ID        string         `json:"id"`
	ActorID   string         `json:"actor_id"`
	TargetID  string         `json:"target_id"`
	Action    string         `json:"action"` // role_change | user_delete
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
