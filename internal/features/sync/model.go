package sync

import (
	"time"

	"supplier-portal/internal/common/models"
)

// Type names one reconciliation job.
type Type string

const (
	TypeVendors        Type = "vendors"
	TypeDealers        Type = "dealers"
	TypeBuyers         Type = "buyers"
	TypePurchaseOrders Type = "purchase_orders"
	TypeItems          Type = "items"

	// TypeAll selects every type in AllTypes order.
	TypeAll Type = "all"
)

// AllTypes is the order RunAll walks; accounts come before the records that reference them.
var AllTypes = []Type{TypeVendors, TypeDealers, TypeBuyers, TypePurchaseOrders, TypeItems}

func (t Type) Valid() bool {
	for _, v := range AllTypes {
		if v == t {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Purchase order policies.
const (
	PolicyCreateOnly = "create-only"
	PolicyUpsert     = "upsert"
)

// SyncLog is the audit row of one run. It is inserted as running and
// finalized exactly once.
type SyncLog struct {
	ID         uint         `json:"id" gorm:"primaryKey"`
	Type       Type         `json:"type" gorm:"size:32;index"`
	Status     Status       `json:"status" gorm:"size:16;index"`
	Trigger    string       `json:"trigger" gorm:"size:16"`
	StartedAt  time.Time    `json:"started_at" gorm:"index"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
	Processed  int          `json:"processed"`
	Created    int          `json:"created"`
	Updated    int          `json:"updated"`
	Failed     int          `json:"failed"`
	Error      string       `json:"error,omitempty" gorm:"type:text"`
	Details    models.JSONB `json:"details,omitempty" gorm:"type:text"`
}

// Counts are the per-category counters kept in SyncLog.Details.
type Counts struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Failed    int `json:"failed"`
}

type LogFilter struct {
	Type   Type
	Status Status
	Limit  int
	Offset int
}

// Result is what a run reports back to callers.
type Result struct {
	LogID  uint              `json:"log_id"`
	Type   Type              `json:"type"`
	Status Status            `json:"status"`
	Totals Counts            `json:"totals"`
	Detail map[string]Counts `json:"details"`
	Error  string            `json:"error,omitempty"`
}
