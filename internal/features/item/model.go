package item

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a dealer-facing SKU mirrored from the ERP.
type Item struct {
	ID             int64           `json:"id" gorm:"primaryKey;autoIncrement:false"`
	SKU            string          `json:"sku" gorm:"size:128;index"`
	Name           string          `json:"name" gorm:"size:255"`
	Description    string          `json:"description" gorm:"type:text"`
	QuantityOnHand float64         `json:"quantity_on_hand"`
	Price          decimal.Decimal `json:"price" gorm:"type:decimal(18,4)"`
	IsActive       bool            `json:"is_active" gorm:"not null"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type SubscriptionKind string

const (
	KindInStock    SubscriptionKind = "in_stock"
	KindOutOfStock SubscriptionKind = "out_of_stock"
	KindLowStock   SubscriptionKind = "low_stock"
	KindCustom     SubscriptionKind = "custom"
)

func (k SubscriptionKind) Valid() bool {
	switch k {
	case KindInStock, KindOutOfStock, KindLowStock, KindCustom:
		return true
	}
	return false
}

// Subscription binds a user to stock changes on one item.
type Subscription struct {
	ID             uint             `json:"id" gorm:"primaryKey"`
	UserID         uint             `json:"user_id" gorm:"not null;uniqueIndex:idx_sub_user_item_kind"`
	ItemID         int64            `json:"item_id" gorm:"not null;index;uniqueIndex:idx_sub_user_item_kind"`
	Kind           SubscriptionKind `json:"kind" gorm:"size:16;not null;uniqueIndex:idx_sub_user_item_kind"`
	Threshold      float64          `json:"threshold"`
	Expression     string           `json:"expression,omitempty" gorm:"type:text"`
	IsActive       bool             `json:"is_active" gorm:"not null"`
	LastNotifiedAt *time.Time       `json:"last_notified_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`

	SubscriberEmail string `json:"-" gorm:"->;-:migration"`
}

func (Subscription) TableName() string { return "item_subscriptions" }

type ItemFilter struct {
	Search  string
	InStock bool
	Limit   int
	Offset  int
}
