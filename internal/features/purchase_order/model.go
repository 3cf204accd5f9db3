package purchase_order

import (
	"time"

	"supplier-portal/internal/common/models"

	"github.com/shopspring/decimal"
)

// Status mirrors the ERP's single-letter purchase order status.
type Status string

const (
	StatusPendingApproval    Status = "A"
	StatusPendingReceipt     Status = "B"
	StatusRejected           Status = "C"
	StatusPartiallyReceived  Status = "D"
	StatusPendingBillPartial Status = "E"
	StatusPendingBill        Status = "F"
	StatusFullyBilled        Status = "G"
	StatusClosed             Status = "H"
)

var statusLabels = map[Status]string{
	StatusPendingApproval:    "Pending Supervisor Approval",
	StatusPendingReceipt:     "Pending Receipt",
	StatusRejected:           "Rejected by Supervisor",
	StatusPartiallyReceived:  "Partially Received",
	StatusPendingBillPartial: "Pending Billing/Partially Received",
	StatusPendingBill:        "Pending Bill",
	StatusFullyBilled:        "Fully Billed",
	StatusClosed:             "Closed",
}

func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

type PurchaseOrder struct {
	ID                int64           `json:"id" gorm:"primaryKey;autoIncrement:false"`
	TranID            string          `json:"tran_id" gorm:"size:64;index"`
	VendorID          int64           `json:"vendor_id" gorm:"index"`
	Status            Status          `json:"status" gorm:"size:4;index"`
	Total             decimal.Decimal `json:"total" gorm:"type:decimal(18,2)"`
	Currency          string          `json:"currency" gorm:"size:16"`
	TranDate          *time.Time      `json:"tran_date,omitempty"`
	DueDate           *time.Time      `json:"due_date,omitempty"`
	PortDate          *time.Time      `json:"port_date,omitempty"`
	ShipDate          *time.Time      `json:"ship_date,omitempty"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery,omitempty"`
	BuyerID           *int64          `json:"buyer_id,omitempty" gorm:"index"`
	Memo              string          `json:"memo" gorm:"type:text"`
	HasVendorUpdates  bool            `json:"has_vendor_updates" gorm:"index"`
	PendingChanges    models.JSONB    `json:"pending_changes,omitempty" gorm:"type:text"`
	RawPayload        models.JSONB    `json:"-" gorm:"type:text"`
	LastSyncedAt      *time.Time      `json:"last_synced_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	Lines []LineItem `json:"lines,omitempty" gorm:"foreignKey:PurchaseOrderID"`
}

// LineItem rows have no identity across syncs; they are replaced wholesale.
type LineItem struct {
	ID                  uint            `json:"id" gorm:"primaryKey"`
	PurchaseOrderID     int64           `json:"purchase_order_id" gorm:"index;not null"`
	Line                int             `json:"line"`
	ItemID              int64           `json:"item_id"`
	ItemName            string          `json:"item_name" gorm:"size:255"`
	Description         string          `json:"description" gorm:"type:text"`
	Quantity            float64         `json:"quantity"`
	QuantityReceived    float64         `json:"quantity_received"`
	Rate                decimal.Decimal `json:"rate" gorm:"type:decimal(18,4)"`
	Amount              decimal.Decimal `json:"amount" gorm:"type:decimal(18,2)"`
	ExpectedReceiptDate *time.Time      `json:"expected_receipt_date,omitempty"`
}

func (LineItem) TableName() string { return "purchase_order_lines" }

// Changes are the portal-editable fields. Nil means untouched.
type Changes struct {
	ShipDate          *time.Time `json:"ship_date,omitempty"`
	PortDate          *time.Time `json:"port_date,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	Memo              *string    `json:"memo,omitempty"`
}

func (c Changes) Empty() bool {
	return c.ShipDate == nil && c.PortDate == nil && c.EstimatedDelivery == nil && c.Memo == nil
}

// Apply copies the set fields onto the purchase order.
func (c Changes) Apply(po *PurchaseOrder) {
	if c.ShipDate != nil {
		po.ShipDate = c.ShipDate
	}
	if c.PortDate != nil {
		po.PortDate = c.PortDate
	}
	if c.EstimatedDelivery != nil {
		po.EstimatedDelivery = c.EstimatedDelivery
	}
	if c.Memo != nil {
		po.Memo = *c.Memo
	}
}

// ERPFields is the PATCH body written back to the ERP record.
func (c Changes) ERPFields() map[string]interface{} {
	fields := map[string]interface{}{}
	if c.ShipDate != nil {
		fields["shipDate"] = c.ShipDate.Format("2006-01-02")
	}
	if c.PortDate != nil {
		fields["custbody_port_date"] = c.PortDate.Format("2006-01-02")
	}
	if c.EstimatedDelivery != nil {
		fields["custbody_estimated_delivery"] = c.EstimatedDelivery.Format("2006-01-02")
	}
	if c.Memo != nil {
		fields["memo"] = *c.Memo
	}
	return fields
}

type Filter struct {
	VendorID      int64
	BuyerID       *int64
	Status        Status
	PendingOnly   bool
	Search        string
	Limit, Offset int
}
