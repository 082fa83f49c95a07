package models

import "time"

// StudyTimer tracks one study session for streak computation.
type StudyTimer struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	TenantID        string     `json:"tenantId"`
	StartedAt       time.Time  `json:"startedAt"`
	StoppedAt       *time.Time `json:"stoppedAt,omitempty"`
	DurationSeconds int        `json:"durationSeconds"`
}

// IsRunning reports whether the timer has not been stopped yet.
func (t *StudyTimer) IsRunning() bool {
	return t.StoppedAt == nil
}
