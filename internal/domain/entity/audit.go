package entity

import (
	"encoding/json"
	"time"
)

// AuditLog records an auth or mutation event for later inspection.
type AuditLog struct {
	ID        string
	UserID    string
	Email     string
	Action    string
	IP        string
	UserAgent string
	Metadata  json.RawMessage
	CreatedAt time.Time
}
