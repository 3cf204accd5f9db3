package cron_feature

import "time"

// Entry describes one scheduled sync as exposed by GET /api/cron.
type Entry struct {
	SyncType string     `json:"sync_type"`
	Schedule string     `json:"schedule"`
	NextRun  *time.Time `json:"next_run,omitempty"`
	PrevRun  *time.Time `json:"prev_run,omitempty"`
}
