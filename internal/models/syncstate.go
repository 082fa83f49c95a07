package models

import "time"

// SyncStatus is the state of the reconciliation cycle.
type SyncStatus string

const (
	SyncNever      SyncStatus = "never"
	SyncInProgress SyncStatus = "in-progress"
	SyncCompleted  SyncStatus = "completed"
	SyncError      SyncStatus = "error"
)

// SyncStateID is the key of the singleton sync state record.
const SyncStateID = "state"

// SyncState describes reconciliation progress for the local replica. It is
// persisted through the repository so a restarted process resumes from
// "needs migration" instead of silently skipping.
type SyncState struct {
	ID                string     `json:"id"`
	LastSyncAt        *time.Time `json:"lastSyncAt,omitempty"`
	Status            SyncStatus `json:"status"`
	SyncedCollections []string   `json:"syncedCollections,omitempty"`
	ErrorMessage      string     `json:"errorMessage,omitempty"`
}
