package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// Invoice is a vendor bill submitted through the portal against one purchase order.
type Invoice struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	PurchaseOrderID int64           `json:"purchase_order_id" gorm:"index;not null"`
	VendorID        int64           `json:"vendor_id" gorm:"not null;uniqueIndex:idx_invoice_vendor_number"`
	Number          string          `json:"number" gorm:"size:64;not null;uniqueIndex:idx_invoice_vendor_number"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(18,2)"`
	InvoiceDate     time.Time       `json:"invoice_date"`
	Memo            string          `json:"memo" gorm:"type:text"`
	Status          Status          `json:"status" gorm:"size:16;index"`
	SubmittedBy     uint            `json:"submitted_by"`
	ReviewedBy      *uint           `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time      `json:"reviewed_at,omitempty"`
	Note            string          `json:"note,omitempty" gorm:"type:text"`
	NetSuiteBillID  string          `json:"netsuite_bill_id,omitempty" gorm:"column:netsuite_bill_id;size:32"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type SubmitRequest struct {
	PurchaseOrderID int64  `json:"purchase_order_id" validate:"required"`
	Number          string `json:"number" validate:"required,max=64"`
	Amount          string `json:"amount" validate:"required,numeric"`
	InvoiceDate     string `json:"invoice_date" validate:"required,datetime=2006-01-02"`
	Memo            string `json:"memo" validate:"max=2000"`
}

type Filter struct {
	VendorID        int64
	PurchaseOrderID int64
	Status          Status
	Limit, Offset   int
}
