package models

import "time"

// SyncError describes one record that could not be pushed.
type SyncError struct {
	LocalID   int64  `json:"local_id"`
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

// SyncResult is the outcome of one sync pass.
//
// Success is true when at least one record was pushed or nothing failed;
// a non-empty batch where every upload failed is the only false case.
type SyncResult struct {
	Success     bool        `json:"success"`
	SyncedCount int         `json:"synced_count"`
	FailedCount int         `json:"failed_count"`
	Errors      []SyncError `json:"errors"`
}

// SyncStatus is a point-in-time view of the sync engine for one owner.
type SyncStatus struct {
	IsOnline     bool       `json:"is_online"`
	IsSyncing    bool       `json:"is_syncing"`
	LastSyncAt   *time.Time `json:"last_sync_at"`
	PendingCount int        `json:"pending_count"`
}

// SyncStats summarizes how much of an owner's journal has been pushed.
type SyncStats struct {
	TotalLogs      int `json:"total_logs"`
	SyncedLogs     int `json:"synced_logs"`
	UnsyncedLogs   int `json:"unsynced_logs"`
	SyncPercentage int `json:"sync_percentage"`
}
