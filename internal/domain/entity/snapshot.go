package entity

import (
	"encoding/json"
	"time"
)

// Snapshot is one day's entry in a user's balance history log. At most one
// row exists per user per calendar day; a second snapshot on the same day
// replaces that day's payload.
type Snapshot struct {
	ID        string
	UserID    string
	Date      time.Time // calendar day, time part zero
	Payload   json.RawMessage
	CreatedAt time.Time
}
