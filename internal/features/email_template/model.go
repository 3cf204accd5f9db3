package email_template

import "time"

// EmailTemplate is addressed by Name; bodies use {{var}} placeholders.
type EmailTemplate struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:128;uniqueIndex;not null" validate:"required"`
	Subject     string    `json:"subject" gorm:"size:512;not null" validate:"required"`
	Body        string    `json:"body" gorm:"type:text"`
	Description string    `json:"description" gorm:"size:512"`
	IsActive    bool      `json:"is_active" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const (
	TemplateOTPCode           = "otp_code"
	TemplatePOVendorUpdate    = "po_vendor_update"
	TemplatePOChangesApproved = "po_changes_approved"
	TemplatePOChangesRejected = "po_changes_rejected"
	TemplateInvoiceSubmitted  = "invoice_submitted"
	TemplateInvoiceApproved   = "invoice_approved"
	TemplateInvoiceRejected   = "invoice_rejected"
	TemplateMessageReceived   = "message_received"
	TemplateItemPrefix        = "item_"
	TemplateSyncFailed        = "sync_failed"
)

// Defaults are inserted at startup when no template of the same name exists.
var Defaults = []EmailTemplate{
	{
		Name:    TemplateOTPCode,
		Subject: "Your login code: {{code}}",
		Body:    "<p>Your one-time login code is <strong>{{code}}</strong>.</p><p>It expires in {{minutes}} minutes.</p>",
	},
	{
		Name:    TemplateItemPrefix + "in_stock",
		Subject: "{{item_name}} is back in stock",
		Body:    "<p>{{item_name}} ({{sku}}) is back in stock with {{new_qty}} units available.</p>",
	},
	{
		Name:    TemplateItemPrefix + "out_of_stock",
		Subject: "{{item_name}} is out of stock",
		Body:    "<p>{{item_name}} ({{sku}}) is now out of stock.</p>",
	},
	{
		Name:    TemplateItemPrefix + "low_stock",
		Subject: "{{item_name}} is running low",
		Body:    "<p>{{item_name}} ({{sku}}) has {{new_qty}} units left, below your threshold of {{threshold}}.</p>",
	},
	{
		Name:    TemplateItemPrefix + "custom",
		Subject: "Stock alert for {{item_name}}",
		Body:    "<p>{{item_name}} ({{sku}}) changed from {{old_qty}} to {{new_qty}} units.</p>",
	},
	{
		Name:    TemplatePOVendorUpdate,
		Subject: "PO {{tran_id}}: vendor proposed changes",
		Body:    "<p>{{vendor_name}} proposed changes to purchase order {{tran_id}}:</p><pre>{{changes}}</pre>",
	},
	{
		Name:    TemplatePOChangesApproved,
		Subject: "PO {{tran_id}}: your changes were approved",
		Body:    "<p>Your proposed changes to purchase order {{tran_id}} were approved.</p>",
	},
	{
		Name:    TemplatePOChangesRejected,
		Subject: "PO {{tran_id}}: your changes were rejected",
		Body:    "<p>Your proposed changes to purchase order {{tran_id}} were rejected.</p><p>{{note}}</p>",
	},
	{
		Name:    TemplateInvoiceSubmitted,
		Subject: "Invoice {{number}} submitted for PO {{tran_id}}",
		Body:    "<p>Invoice {{number}} for {{amount}} was submitted against purchase order {{tran_id}}.</p>",
	},
	{
		Name:    TemplateInvoiceApproved,
		Subject: "Invoice {{number}} approved",
		Body:    "<p>Invoice {{number}} for {{amount}} was approved.</p>",
	},
	{
		Name:    TemplateInvoiceRejected,
		Subject: "Invoice {{number}} rejected",
		Body:    "<p>Invoice {{number}} was rejected.</p><p>{{note}}</p>",
	},
	{
		Name:    TemplateMessageReceived,
		Subject: "New message: {{subject}}",
		Body:    "<p>{{sender}} wrote:</p><blockquote>{{body}}</blockquote>",
	},
	{
		Name:    TemplateSyncFailed,
		Subject: "ERP sync failed: {{type}}",
		Body:    "<p>The {{type}} sync failed: {{error}}</p>",
	},
}
