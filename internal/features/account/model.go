package account

import (
	"time"

	"supplier-portal/internal/common/models"
)

// Account is a vendor or dealer mirrored from the ERP. The primary key is the
// ERP entity id together with the type; sync never deletes rows.
type Account struct {
	ID         int64              `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Type       models.AccountType `json:"type" gorm:"primaryKey;size:16"`
	Name       string             `json:"name" gorm:"size:255"`
	Email      string             `json:"email" gorm:"size:255"`
	Phone      string             `json:"phone" gorm:"size:64"`
	IsActive   bool               `json:"is_active" gorm:"not null;index"`
	RawPayload models.JSONB       `json:"-" gorm:"type:text"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

type AccountProfile struct {
	AccountID   int64              `json:"account_id" gorm:"primaryKey;autoIncrement:false"`
	AccountType models.AccountType `json:"account_type" gorm:"primaryKey;size:16"`
	Phone       string             `json:"phone" gorm:"size:64"`
	AltEmail    string             `json:"alt_email" gorm:"size:255"`
	Address     string             `json:"address" gorm:"type:text"`
	Website     string             `json:"website" gorm:"size:255"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// User is a portal principal, unique by (email, type).
type User struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Email       string          `json:"email" gorm:"size:255;not null;uniqueIndex:idx_users_email_type"`
	Type        models.UserType `json:"type" gorm:"size:16;not null;uniqueIndex:idx_users_email_type"`
	Name        string          `json:"name" gorm:"size:255"`
	NetSuiteID  *int64          `json:"netsuite_id,omitempty" gorm:"column:netsuite_id;index"`
	IsActive    bool            `json:"is_active" gorm:"not null"`
	LastLoginAt *time.Time      `json:"last_login_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type AccountUser struct {
	AccountID   int64              `json:"account_id" gorm:"primaryKey;autoIncrement:false"`
	AccountType models.AccountType `json:"account_type" gorm:"primaryKey;size:16"`
	UserID      uint               `json:"user_id" gorm:"primaryKey;autoIncrement:false;index"`
	IsPrimary   bool               `json:"is_primary"`
	CreatedAt   time.Time          `json:"created_at"`
}

// AccountContact is a user linked to an account, as shown on the account page.
type AccountContact struct {
	User
	IsPrimary bool `json:"is_primary"`
}

type AccountDetail struct {
	Account  Account          `json:"account"`
	Profile  *AccountProfile  `json:"profile,omitempty"`
	Contacts []AccountContact `json:"contacts"`
}

type AccountFilter struct {
	Type   models.AccountType
	Search string
	Active *bool
	Limit  int
	Offset int
}
