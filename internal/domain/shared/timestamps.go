package shared

import "time"

// Timestamps is embedded by every aggregate that tracks creation/update
// times, keeping that bookkeeping out of each aggregate's own fields.
type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTimestamps stamps both fields to now.
func NewTimestamps(now time.Time) Timestamps {
	return Timestamps{CreatedAt: now, UpdatedAt: now}
}

// Touch returns a copy with UpdatedAt advanced to now.
func (t Timestamps) Touch(now time.Time) Timestamps {
	t.UpdatedAt = now
	return t
}
